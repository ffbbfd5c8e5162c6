package ansi

const (
	esc = 0x1B
	csi = '['
)

// SGR codes descriptions, used when reporting which codes a capture used.
var SGRCodes = map[int]string{
	0:   "Reset",
	1:   "Bold",
	2:   "Dim",
	3:   "Italic",
	4:   "Underline",
	7:   "Inverse",
	9:   "StrikeThrough",
	21:  "DoubleUnderline",
	22:  "NormalIntensity",
	23:  "ItalicOff",
	24:  "UnderlineOff",
	27:  "InverseOff",
	29:  "StrikeThroughOff",
	30:  "ForegroundBlack",
	31:  "ForegroundRed",
	32:  "ForegroundGreen",
	33:  "ForegroundYellow",
	34:  "ForegroundBlue",
	35:  "ForegroundMagenta",
	36:  "ForegroundCyan",
	37:  "ForegroundWhite",
	38:  "ForegroundExtended",
	39:  "ForegroundDefault",
	40:  "BackgroundBlack",
	41:  "BackgroundRed",
	42:  "BackgroundGreen",
	43:  "BackgroundYellow",
	44:  "BackgroundBlue",
	45:  "BackgroundMagenta",
	46:  "BackgroundCyan",
	47:  "BackgroundWhite",
	48:  "BackgroundExtended",
	49:  "BackgroundDefault",
	90:  "ForegroundBrightBlack",
	91:  "ForegroundBrightRed",
	92:  "ForegroundBrightGreen",
	93:  "ForegroundBrightYellow",
	94:  "ForegroundBrightBlue",
	95:  "ForegroundBrightMagenta",
	96:  "ForegroundBrightCyan",
	97:  "ForegroundBrightWhite",
	100: "BackgroundBrightBlack",
	101: "BackgroundBrightRed",
	102: "BackgroundBrightGreen",
	103: "BackgroundBrightYellow",
	104: "BackgroundBrightBlue",
	105: "BackgroundBrightMagenta",
	106: "BackgroundBrightCyan",
	107: "BackgroundBrightWhite",
}

// DescribeSGR names a numeric SGR parameter, e.g. "31" -> "ForegroundRed".
func DescribeSGR(param string) string {
	code := ParseNumberParam(param, 0)
	if name, ok := SGRCodes[code]; ok {
		return name
	}
	return "Unknown"
}
