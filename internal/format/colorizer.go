package format

// ScalarType indexes the color codes of a Colorizer.
type ScalarType uint8

const (
	Null ScalarType = iota
	Boolean
	Number
	String
)

// A Colorizer surrounds scalars with ANSI color codes.  A nil *Colorizer
// prints scalars without color.
type Colorizer struct {
	KeyColorCode     []byte
	ScalarColorCodes [4][]byte
	ResetCode        []byte
}

func (c *Colorizer) PrintScalar(p Printer, tp ScalarType, b []byte) {
	if c != nil {
		p.PrintBytes(c.ScalarColorCodes[tp])
	}
	p.PrintBytes(b)
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

func (c *Colorizer) PrintKey(p Printer, b []byte) {
	if c != nil {
		p.PrintBytes(c.KeyColorCode)
	}
	p.PrintBytes(b)
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Yellow   = []byte("\033[33m")
	White    = []byte("\033[37m")
	Green    = []byte("\033[32m")
	DimWhite = []byte("\033[37;2m")
	BoldBlue = []byte("\033[34;1m")
)

// DefaultColorizer shows keys in bold blue and strings in green.
var DefaultColorizer = Colorizer{
	ScalarColorCodes: [4][]byte{DimWhite, Yellow, White, Green},
	KeyColorCode:     BoldBlue,
	ResetCode:        Reset,
}
