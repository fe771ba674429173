// Package airport holds the closed sets of airport codes the delay model was
// fitted on.
package airport

// The order of both lists is the column order of the fitted feature encoding.
// Do not sort, add or remove codes without refitting the model artifacts.
var (
	origins = []string{
		"AMD", "ATQ", "BBI", "BDQ", "BHO", "BLR", "BOM", "CCJ", "CCU", "CJB",
		"COK", "DEL", "GAU", "GOI", "GOX", "HYD", "IDR", "IXA", "IXC", "IXJ",
		"IXL", "IXR", "JAI", "JDH", "LKO", "MAA", "PAT", "PNQ", "RAJ", "RDP",
		"SXR", "TLS", "TRV", "UDR",
	}

	destinations = []string{
		"AGR", "AMD", "BBI", "BDQ", "BHO", "BLR", "BOM", "CCU", "CJB", "COK",
		"DEL", "GAY", "GOI", "GOX", "HYD", "IDR", "IXA", "IXC", "IXL", "IXM",
		"IXR", "IXS", "JAI", "LKO", "MAA", "NAG", "PAT", "PNQ", "RAJ", "RDP",
		"STV", "SXR", "UDR",
	}

	originIndex      = index(origins)
	destinationIndex = index(destinations)
)

func index(codes []string) map[string]int {
	m := make(map[string]int, len(codes))
	for i, c := range codes {
		m[c] = i
	}
	return m
}

// Origins returns the known origin codes in column order.
func Origins() []string {
	return append([]string(nil), origins...)
}

// Destinations returns the known destination codes in column order.
func Destinations() []string {
	return append([]string(nil), destinations...)
}

// OriginIndex returns the column position of an origin code.
func OriginIndex(code string) (int, bool) {
	i, ok := originIndex[code]
	return i, ok
}

// DestinationIndex returns the column position of a destination code.
func DestinationIndex(code string) (int, bool) {
	i, ok := destinationIndex[code]
	return i, ok
}

// IsOrigin reports whether code is a known origin.
func IsOrigin(code string) bool {
	_, ok := originIndex[code]
	return ok
}

// IsDestination reports whether code is a known destination.
func IsDestination(code string) bool {
	_, ok := destinationIndex[code]
	return ok
}
