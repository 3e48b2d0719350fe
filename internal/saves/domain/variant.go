package domain

import (
	"strconv"
	"strings"
)

// Variant identifies which release of the game a save layout belongs to.
type Variant int

const (
	Rebirth Variant = iota + 1
	Afterbirth
	AfterbirthPlus
	AfterbirthPlusBP5
	Repentance
)

type variantInfo struct {
	token       string
	displayName string
	directory   string
	cloudPrefix string
	payloadDir  string
}

var variantTable = map[Variant]variantInfo{
	Rebirth: {
		token:       "rebirth",
		displayName: "The Binding of Isaac: Rebirth",
		directory:   "Binding of Isaac Rebirth",
		cloudPrefix: "",
		payloadDir:  "Rebirth",
	},
	Afterbirth: {
		token:       "afterbirth",
		displayName: "The Binding of Isaac: Afterbirth",
		directory:   "Binding of Isaac Afterbirth",
		cloudPrefix: "ab_",
		payloadDir:  "Afterbirth",
	},
	AfterbirthPlus: {
		token:       "afterbirth-plus",
		displayName: "The Binding of Isaac: Afterbirth+ (Vanilla through Booster Pack 4)",
		directory:   "Binding of Isaac Afterbirth+",
		cloudPrefix: "abp_",
		payloadDir:  "Afterbirth+",
	},
	AfterbirthPlusBP5: {
		token:       "afterbirth-plus-bp5",
		displayName: "The Binding of Isaac: Afterbirth+ (Booster Pack 5)",
		directory:   "Binding of Isaac Afterbirth+",
		cloudPrefix: "abp_",
		payloadDir:  "Afterbirth+BP5",
	},
	Repentance: {
		token:       "repentance",
		displayName: "The Binding of Isaac: Repentance",
		directory:   "Binding of Isaac Repentance",
		cloudPrefix: "rep_",
		payloadDir:  "Repentance",
	},
}

// Variants returns every known variant in menu order.
func Variants() []Variant {
	return []Variant{Rebirth, Afterbirth, AfterbirthPlus, AfterbirthPlusBP5, Repentance}
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	_, ok := variantTable[v]
	return ok
}

func (v Variant) String() string {
	if info, ok := variantTable[v]; ok {
		return info.displayName
	}
	return "Variant(" + strconv.Itoa(int(v)) + ")"
}

// Token is the symbolic name accepted on the command line.
func (v Variant) Token() string {
	return variantTable[v].token
}

// DirectoryName is the game's directory under "My Games".
func (v Variant) DirectoryName() string {
	return variantTable[v].directory
}

// CloudPrefix is prepended to slot file names inside the cloud directory.
func (v Variant) CloudPrefix() string {
	return variantTable[v].cloudPrefix
}

// PayloadDirectory names the directory holding this variant's bundled save.
func (v Variant) PayloadDirectory() string {
	return variantTable[v].payloadDir
}

// VariantAt maps a 1-based menu number to a variant.
func VariantAt(number int) (Variant, error) {
	all := Variants()
	if number < 1 || number > len(all) {
		return 0, Newf(CodeSlotIndexOutOfRange, "%d is not a valid game selection (expected 1-%d)", number, len(all)).
			WithDetail("selection", number)
	}
	return all[number-1], nil
}

var variantAliases = map[string]Variant{
	"ab":             Afterbirth,
	"afterbirth+":    AfterbirthPlus,
	"abp":            AfterbirthPlus,
	"afterbirth+bp5": AfterbirthPlusBP5,
	"abp-bp5":        AfterbirthPlusBP5,
	"rep":            Repentance,
}

// ParseVariant accepts either a menu number or a symbolic token such as "repentance".
func ParseVariant(input string) (Variant, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.Atoi(trimmed); err == nil {
		return VariantAt(n)
	}
	for _, v := range Variants() {
		if trimmed == v.Token() {
			return v, nil
		}
	}
	if v, ok := variantAliases[trimmed]; ok {
		return v, nil
	}
	return 0, Newf(CodeSlotIndexOutOfRange, "%q is not a valid game selection", input).
		WithDetail("selection", input)
}
