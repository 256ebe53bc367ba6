package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Сканирование комментария
	ScanInfo             Code = 1000
	ScanLoneEscape       Code = 1001
	ScanUnknownDirective Code = 1002
	ScanLegacyDirective  Code = 1003

	// Проверка директив против объявления
	DocInfo               Code = 2000
	DocUnknownParam       Code = 2001
	DocRepeatedParam      Code = 2002
	DocRepeatedReturns    Code = 2003
	DocRepeatedNoexceptIf Code = 2004
	DocReturnsOnVoid      Code = 2005
	DocThrowsOnNoexcept   Code = 2006

	// Недокументированные объявления
	UndocInfo Code = 3000
	UndocDecl Code = 3001

	// I/O
	IOLoadFileError Code = 4001
	IOLoadIndex     Code = 4002

	// Индекс объявлений
	IdxInfo         Code = 5000
	IdxUnknownKind  Code = 5001
	IdxBadLocation  Code = 5002
	IdxMissingFile  Code = 5003
	IdxDuplicateKey Code = 5004

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		ScanInfo:              "Comment scanning information",
		ScanLoneEscape:        "Backslash without a directive name",
		ScanUnknownDirective:  "Unknown directive",
		ScanLegacyDirective:   "Unsupported Doxygen command",
		DocInfo:               "Directive validation information",
		DocUnknownParam:       "Documented parameter does not exist",
		DocRepeatedParam:      "Parameter documented more than once",
		DocRepeatedReturns:    "Return value documented more than once",
		DocRepeatedNoexceptIf: "Noexcept condition documented more than once",
		DocReturnsOnVoid:      "Return value documented on a void function",
		DocThrowsOnNoexcept:   "Exception documented on a noexcept function",
		UndocInfo:             "Undocumented declaration information",
		UndocDecl:             "Declaration is not documented",
		IOLoadFileError:       "I/O load file error",
		IOLoadIndex:           "Declaration index could not be read",
		IdxInfo:               "Declaration index information",
		IdxUnknownKind:        "Unknown declaration kind",
		IdxBadLocation:        "Declaration location outside its file",
		IdxMissingFile:        "Declaration refers to a file that was not loaded",
		IdxDuplicateKey:       "Declaration listed more than once",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DOC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("UND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IDX%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
