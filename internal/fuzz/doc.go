// Package fuzztests houses Go fuzz harnesses for the comment pipeline
// (source -> comment -> scan -> docparse). They smoke test robustness and
// guard against panics and out-of-file spans on arbitrary inputs.
//
// Назначение: загружать байты в FileSet, прикреплять комментарий к последней
// строке и прогонять его через сканер и сессию.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/comment, internal/scan,
// internal/docparse, internal/testkit.

package fuzztests
