// Package countries lists the countries a user can pick on their profile.
//
// Codes are ISO 3166-1 alpha-2; names come from CLDR via x/text.
package countries

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const isoCodes = "AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ " +
	"CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ DE DJ DK DM DO DZ EC EE EG EH ER ES ET FI FJ FK FM FO FR " +
	"GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY HK HM HN HR HT HU ID IE IL IM IN IO IQ IR IS IT JE JM JO JP " +
	"KE KG KH KI KM KN KP KR KW KY KZ LA LB LC LI LK LR LS LT LU LV LY MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ " +
	"NA NC NE NF NG NI NL NO NP NR NU NZ OM PA PE PF PG PH PK PL PM PN PR PS PT PW PY QA RE RO RS RU RW " +
	"SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ " +
	"UA UG UM US UY UZ VA VC VE VG VI VN VU WF WS YE YT ZA ZM ZW"

// Country is one selectable entry.
type Country struct {
	Code string
	Name string
}

var (
	once sync.Once
	list []Country
	byID map[string]string
)

func load() {
	namer := display.English.Regions()
	for _, code := range strings.Fields(isoCodes) {
		region, err := language.ParseRegion(code)
		if err != nil || !region.IsCountry() {
			continue
		}
		name := namer.Name(region)
		if name == "" {
			name = code
		}
		list = append(list, Country{Code: code, Name: name})
	}
	col := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(list, func(i, j int) bool {
		return col.CompareString(list[i].Name, list[j].Name) < 0
	})
	byID = make(map[string]string, len(list))
	for _, c := range list {
		byID[c.Code] = c.Name
	}
}

// All returns every country sorted by English name.
func All() []Country {
	once.Do(load)
	out := make([]Country, len(list))
	copy(out, list)
	return out
}

// IsValid reports whether code is a listed country code.
func IsValid(code string) bool {
	once.Do(load)
	_, ok := byID[code]
	return ok
}

// Name returns the English name for code, or code when unknown.
func Name(code string) string {
	once.Do(load)
	if n, ok := byID[code]; ok {
		return n
	}
	return code
}
