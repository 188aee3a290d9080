package phyxcalc

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type hexopt bool

// parsectx holds general data for parsing.
type parsectx struct {
	// names is the set of names that have been seen this parse, other than
	// the names of called functions.
	names map[string]bool
	// hex enables hexadecimal literals like 0x1F.
	hex bool
}

// AllowHex enables or disables hexadecimal literals of the form 0x1F. They
// are disabled by default because 0x would otherwise read as a zero followed
// by a name.
func AllowHex(allow bool) ParseOption {
	return hexopt(allow)
}

func (o hexopt) parseOption(p parsectx) parsectx {
	p.hex = bool(o)
	return p
}
