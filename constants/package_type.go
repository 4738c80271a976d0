package constants

import (
	"strings"
)

type PackageType string

const (
	Pallet    PackageType = "pallet"
	EURPallet PackageType = "eur-pallet"
	Colli     PackageType = "colli"
	Carton    PackageType = "carton"
	Crate     PackageType = "crate"
	Roll      PackageType = "roll"
	Drum      PackageType = "drum"
	Bulk      PackageType = "bulk"
	Package   PackageType = "package"
)

var allPackageTypes = []PackageType{
	Pallet,
	EURPallet,
	Colli,
	Carton,
	Crate,
	Roll,
	Drum,
	Bulk,
	Package,
}

// CanonicalizePackageType maps the abbreviations printed on transport documents
// onto a canonical package type. Unknown input returns Package, false.
func CanonicalizePackageType(input string) (PackageType, bool) {
	if input == "" {
		return Package, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.Trim(normalized, ".,;:()")

	// synonyms map
	synonyms := map[string]PackageType{
		"pal":      Pallet,
		"pals":     Pallet,
		"pallets":  Pallet,
		"plt":      Pallet,
		"palette":  Pallet,
		"palettes": Pallet,
		"epal":     EURPallet,
		"eur":      EURPallet,
		"euro":     EURPallet,
		"europal":  EURPallet,
		"coli":     Colli,
		"colis":    Colli,
		"pcs":      Colli,
		"ctn":      Carton,
		"cartons":  Carton,
		"box":      Carton,
		"boxes":    Carton,
		"crates":   Crate,
		"rolls":    Roll,
		"drums":    Drum,
		"packages": Package,
		"pkg":      Package,
		"pkgs":     Package,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allPackageTypes {
		if normalized == string(t) {
			return t, true
		}
	}

	return Package, false
}
