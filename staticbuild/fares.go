package staticbuild

import (
	"fmt"
	"math"

	"caltrain.dev/transit/model"
)

// buildFares implements §4.3 step 7: fare_rules rows with both an
// origin and destination zone become a direct-price lookup in integer
// cents; zone metadata comes from farezone_attributes.txt.
func buildFares(fareAttrs []*FareAttributeRow, fareRules []*FareRuleRow, zones []*FareZoneRow) model.Fares {
	priceByFareID := map[string]float64{}
	for _, fa := range fareAttrs {
		priceByFareID[fa.FareID] = fa.Price
	}

	fares := model.Fares{
		Zones: map[string]model.ZoneInfo{},
		Fares: map[string]int{},
	}

	for _, z := range zones {
		fares.Zones[z.ZoneID] = model.ZoneInfo{Name: z.Name}
	}

	for _, rule := range fareRules {
		if rule.OriginID == "" || rule.DestID == "" {
			continue
		}
		price, ok := priceByFareID[rule.FareID]
		if !ok {
			continue
		}
		key := fmt.Sprintf("%s→%s", rule.OriginID, rule.DestID)
		fares.Fares[key] = int(math.Round(price * 100))
	}

	return fares
}
