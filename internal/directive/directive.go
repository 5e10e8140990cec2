package directive

import "encoding/json"

// Kind discriminates the directive variants.
type Kind int

const (
	KindFile Kind = iota
	KindSymbol
	KindGlob
	KindURL
	KindCommand
	KindCodeFence
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSymbol:
		return "symbol"
	case KindGlob:
		return "glob"
	case KindURL:
		return "url"
	case KindCommand:
		return "command"
	case KindCodeFence:
		return "code-fence"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind as its name, not its ordinal.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// LineRange is a 1-based inclusive line slice of a file import.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Directive is one recognized import instruction. Original is the exact
// matched substring and Index its byte offset in the scanned document;
// together they define the splice target. Only the fields of the variant
// named by Kind are populated.
type Directive struct {
	Kind     Kind       `json:"kind"`
	Original string     `json:"original"`
	Index    int        `json:"index"`
	Path     string     `json:"path,omitempty"`    // KindFile, KindSymbol
	Range    *LineRange `json:"range,omitempty"`   // KindFile with a line slice
	Symbol   string     `json:"symbol,omitempty"`  // KindSymbol
	Pattern  string     `json:"pattern,omitempty"` // KindGlob
	URL      string     `json:"url,omitempty"`     // KindURL
	Command  string     `json:"command,omitempty"` // KindCommand
	Shebang  string     `json:"shebang,omitempty"` // KindCodeFence
	Language string     `json:"language,omitempty"`
	Code     string     `json:"code,omitempty"`
}
