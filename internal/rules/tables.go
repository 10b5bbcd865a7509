package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tables holds every lookup used by the rule engine. Loaded once at startup
// and treated as immutable for the process lifetime; safe for concurrent
// reads without locking. All keys are normalized (lowercased, trimmed).
type Tables struct {
	Cities      map[string]string // locality/alias -> parent city
	Vehicles    map[string]string // free-text alias -> canonical vehicle group
	Corporates  map[string]string // registry keyword -> display name
	Dispatch    map[string]string // city -> dispatch center
	MajorCities map[string]bool   // destinations in the 250KMS outstation band
}

// DefaultVehicle is assigned when no vehicle mention resolves. Never null.
const DefaultVehicle = "Swift Dzire"

// DefaultDispatch is assigned when the origin city has no dispatch mapping.
const DefaultDispatch = "Central Dispatch"

// NormalizeKey lowercases and trims a lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultTables returns the compiled-in lookup set covering the routes the
// dispatch desk handles today. CSV files extend or override these.
func DefaultTables() *Tables {
	return &Tables{
		Cities: map[string]string{
			"mumbai":      "Mumbai",
			"bombay":      "Mumbai",
			"navi mumbai": "Mumbai",
			"thane":       "Mumbai",
			"delhi":       "Delhi",
			"new delhi":   "Delhi",
			"ncr":         "Delhi",
			"bangalore":   "Bangalore",
			"bengaluru":   "Bangalore",
			"pune":        "Pune",
			"hyderabad":   "Hyderabad",
			"chennai":     "Chennai",
			"madras":      "Chennai",
			"kolkata":     "Kolkata",
			"calcutta":    "Kolkata",
			"gurgaon":     "Gurgaon",
			"gurugram":    "Gurgaon",
			"noida":       "Noida",
			"faridabad":   "Faridabad",
			"ghaziabad":   "Ghaziabad",
			"ahmedabad":   "Ahmedabad",
			"aurangabad":  "Aurangabad",
			"nashik":      "Nashik",
			"mysore":      "Mysore",
		},
		Vehicles: map[string]string{
			"dzire":         "Swift Dzire",
			"swift dzire":   "Swift Dzire",
			"maruti dzire":  "Swift Dzire",
			"sedan":         "Swift Dzire",
			"innova":        "Toyota Innova Crysta",
			"innova crysta": "Toyota Innova Crysta",
			"toyota innova": "Toyota Innova Crysta",
			"crysta":        "Toyota Innova Crysta",
			"suv":           "Toyota Innova Crysta",
			"ertiga":        "Maruti Ertiga",
			"maruti ertiga": "Maruti Ertiga",
			"swift":         "Maruti Swift",
			"maruti swift":  "Maruti Swift",
			"hatchback":     "Maruti Swift",
		},
		Corporates: map[string]string{
			"accenture":     "Accenture India Ltd",
			"tcs":           "Tata Consultancy Services",
			"infosys":       "Infosys Limited",
			"wipro":         "Wipro Limited",
			"hcl":           "HCL Technologies",
			"cognizant":     "Cognizant Technology Solutions",
			"tech mahindra": "Tech Mahindra",
			"capgemini":     "Capgemini India",
			"deloitte":      "Deloitte India",
			"pwc":           "PwC India",
			"microsoft":     "Microsoft India",
			"google":        "Google India",
			"amazon":        "Amazon India",
			"medtronic":     "Medtronic India",
			"reliance":      "Reliance Industries",
		},
		Dispatch: map[string]string{
			"mumbai":    "Mumbai Central Dispatch",
			"delhi":     "Delhi NCR Dispatch",
			"gurgaon":   "Delhi NCR Dispatch",
			"noida":     "Delhi NCR Dispatch",
			"bangalore": "Bangalore Dispatch",
			"pune":      "Pune Dispatch",
			"hyderabad": "Hyderabad Dispatch",
			"chennai":   "Chennai Dispatch",
			"kolkata":   "Kolkata Dispatch",
		},
		MajorCities: map[string]bool{
			"mumbai":    true,
			"pune":      true,
			"hyderabad": true,
			"chennai":   true,
			"delhi":     true,
			"ahmedabad": true,
			"bangalore": true,
		},
	}
}

// LoadTables builds the lookup set from the default tables plus any CSV
// overrides. Each CSV is two columns: key, value. Missing paths are skipped.
func LoadTables(cityFile, vehicleFile, corporateFile, dispatchFile string) (*Tables, error) {
	t := DefaultTables()

	for _, src := range []struct {
		path string
		dst  map[string]string
	}{
		{cityFile, t.Cities},
		{vehicleFile, t.Vehicles},
		{corporateFile, t.Corporates},
		{dispatchFile, t.Dispatch},
	} {
		if src.path == "" {
			continue
		}
		if err := mergeCSV(src.path, src.dst); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func mergeCSV(path string, dst map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening lookup file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading lookup file %s: %w", path, err)
		}
		if len(row) < 2 {
			continue
		}
		key := NormalizeKey(row[0])
		val := strings.TrimSpace(row[1])
		if key == "" || val == "" {
			continue
		}
		dst[key] = val
	}
	return nil
}
