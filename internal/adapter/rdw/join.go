package rdw

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
)

// standardDays are the day tokens of regular schedules. Any other token on a
// time frame (holidays, events) marks the zone as having special rules.
var standardDays = map[string]bool{
	"MAANDAG": true, "DINSDAG": true, "WOENSDAG": true, "DONDERDAG": true,
	"VRIJDAG": true, "ZATERDAG": true, "ZONDAG": true, "DAGELIJKS": true,
}

type mgrKey struct {
	manager string
	id      string
}

type farePrice struct {
	amount string
	step   string
}

type regulationInfo struct {
	desc string
	typ  string
}

// BuildZones joins the raw datasets into one ZoneTariffs per parking area.
// today selects the fare parts in effect; zones come out sorted by manager
// and area id.
func BuildZones(ds *Dataset, regions *config.Regions, today time.Time, runID string) []domain.ZoneTariffs {
	day := today.Format("20060102")

	areaRegs, usage := indexMappings(ds.AreaRegulations)
	frames := indexTimeFrames(ds.TimeFrames)
	fares := indexFareParts(ds.FareParts, day)

	regs := make(map[mgrKey]regulationInfo, len(ds.Regulations))
	for _, r := range ds.Regulations {
		if r.ManagerID == "" || r.RegulationID == "" {
			continue
		}
		typ := r.Type
		if typ == "" {
			typ = "B"
		}
		regs[mgrKey{r.ManagerID, r.RegulationID}] = regulationInfo{desc: r.Desc, typ: typ}
	}

	calcs := make(map[mgrKey]string, len(ds.FareCalculations))
	for _, c := range ds.FareCalculations {
		if c.ManagerID == "" || c.Code == "" {
			continue
		}
		calcs[mgrKey{c.ManagerID, c.Code}] = c.Desc
	}

	areas := make(map[mgrKey]Area)
	for _, a := range ds.Areas {
		if a.AreaID == "" {
			continue
		}
		areas[mgrKey{a.ManagerID, a.AreaID}] = a
	}
	for _, m := range ds.AreaRegulations {
		if m.AreaID == "" || m.ManagerID == "" {
			continue
		}
		k := mgrKey{m.ManagerID, m.AreaID}
		if _, ok := areas[k]; !ok {
			areas[k] = Area{ManagerID: m.ManagerID, AreaID: m.AreaID}
		}
	}

	keys := make([]mgrKey, 0, len(areas))
	for k := range areas {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].manager != keys[j].manager {
			return keys[i].manager < keys[j].manager
		}
		return keys[i].id < keys[j].id
	})

	zones := make([]domain.ZoneTariffs, 0, len(keys))
	for _, k := range keys {
		area := areas[k]
		city := regions.City(k.manager)

		name := strings.TrimSpace(area.Desc)
		if name == "" {
			name = city + " Zone " + k.id
		}

		zone := domain.ZoneTariffs{
			ManagerID:       k.manager,
			ZoneID:          k.id,
			DisplayID:       k.id,
			Name:            name,
			City:            city,
			Geo:             locate(area, regions),
			UsageID:         usage[k],
			MaxDurationMins: domain.DefaultMaxDurationMins,
			RunID:           runID,
		}
		if alias, ok := regions.Aliases[k.manager+"_"+k.id]; ok {
			zone.DisplayID = alias
		}

		regIDs, ok := areaRegs[k]
		if !ok {
			regIDs = []string{k.id}
		}
		for _, regID := range regIDs {
			reg, ok := regs[mgrKey{k.manager, regID}]
			if !ok {
				reg = regulationInfo{typ: "B"}
			}
			seen := make(map[[2]string]bool)
			for _, tf := range frames[mgrKey{k.manager, regID}] {
				if md, err := strconv.Atoi(strings.TrimSpace(tf.MaxDuration)); err == nil && md > 0 {
					zone.MaxDurationMins = md
				}
				if !standardDays[tf.Day] {
					zone.HasSpecialRules = true
				}

				sig := [2]string{tf.Day, tf.Start}
				if seen[sig] {
					continue
				}
				seen[sig] = true

				fare, ok := fares[mgrKey{k.manager, tf.FareCalculationCode}]
				if !ok {
					continue
				}
				desc, ok := calcs[mgrKey{k.manager, tf.FareCalculationCode}]
				if !ok || desc == "" {
					desc = tf.FareCalculationCode
				}
				if strings.Contains(strings.ToLower(desc), "kaart") {
					continue
				}

				dayToken := tf.Day
				if dayToken == "" {
					dayToken = "DAGELIJKS"
				}
				zone.Rules = append(zone.Rules, domain.RawRule{
					Day:            dayToken,
					Start:          tf.Start,
					End:            tf.End,
					Amount:         fare.amount,
					StepSize:       fare.step,
					Description:    desc,
					RegulationID:   regID,
					RegulationType: reg.typ,
				})
			}
		}
		zones = append(zones, zone)
	}
	return zones
}

// indexMappings returns regulation ids per area, newest mapping first and
// without repeats, plus the usage id of the newest mapping per area.
func indexMappings(mappings []AreaRegulation) (map[mgrKey][]string, map[mgrKey]string) {
	sorted := append([]AreaRegulation(nil), mappings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateOrZero(sorted[i].StartDate) > dateOrZero(sorted[j].StartDate)
	})

	regs := make(map[mgrKey][]string)
	usage := make(map[mgrKey]string)
	seen := make(map[[3]string]bool)
	for _, m := range sorted {
		if m.AreaID == "" || m.RegulationID == "" {
			continue
		}
		k := mgrKey{m.ManagerID, m.AreaID}
		if _, ok := usage[k]; !ok && m.UsageID != "" {
			usage[k] = m.UsageID
		}
		sig := [3]string{m.ManagerID, m.AreaID, m.RegulationID}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		regs[k] = append(regs[k], m.RegulationID)
	}
	return regs, usage
}

// indexTimeFrames groups time frames per regulation, newest start date first.
func indexTimeFrames(frames []TimeFrame) map[mgrKey][]TimeFrame {
	sorted := append([]TimeFrame(nil), frames...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateOrZero(sorted[i].StartDate) > dateOrZero(sorted[j].StartDate)
	})

	out := make(map[mgrKey][]TimeFrame)
	for _, tf := range sorted {
		if tf.RegulationID == "" {
			continue
		}
		k := mgrKey{tf.ManagerID, tf.RegulationID}
		out[k] = append(out[k], tf)
	}
	return out
}

// indexFareParts keeps, per manager and fare code, the newest fare part that
// has started on or before day (YYYYMMDD).
func indexFareParts(parts []FarePart, day string) map[mgrKey]farePrice {
	sorted := append([]FarePart(nil), parts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateOrZero(sorted[i].StartDate) > dateOrZero(sorted[j].StartDate)
	})

	out := make(map[mgrKey]farePrice)
	for _, p := range sorted {
		if p.FareCalculationCode == "" || dateOrZero(p.StartDate) > day {
			continue
		}
		k := mgrKey{p.ManagerID, p.FareCalculationCode}
		if _, ok := out[k]; ok {
			continue
		}
		fp := farePrice{amount: strings.TrimSpace(p.Amount), step: strings.TrimSpace(p.StepSize)}
		if fp.amount == "" {
			fp.amount = "0"
		}
		if fp.step == "" {
			fp.step = "1"
		}
		out[k] = fp
	}
	return out
}

func dateOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
