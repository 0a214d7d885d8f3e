package models

// Gender values stored by the gender question.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ProvinceOther is the province answer meaning "not listed"; it never matches a province record.
const ProvinceOther = "other"

// LifeExpectancyBaseline holds national life expectancy at birth, in years (BPS 2023).
var LifeExpectancyBaseline = struct {
	Overall float64
	Male    float64
	Female  float64
}{
	Overall: 71.85,
	Male:    69.9,
	Female:  73.8,
}

// ProvinceLifeExpectancy is one provincial life expectancy record.
type ProvinceLifeExpectancy struct {
	Province       string  `json:"province"`
	LifeExpectancy float64 `json:"life_expectancy"`
}

// ProvinceLifeExpectancies is ordered from highest to lowest.
var ProvinceLifeExpectancies = []ProvinceLifeExpectancy{
	{Province: "DI Yogyakarta", LifeExpectancy: 75.48},
	{Province: "Kalimantan Timur", LifeExpectancy: 75.05},
	{Province: "Jawa Tengah", LifeExpectancy: 74.23},
	{Province: "DKI Jakarta", LifeExpectancy: 74.02},
	{Province: "Jawa Barat", LifeExpectancy: 73.25},
	{Province: "Riau", LifeExpectancy: 72.71},
	{Province: "Bali", LifeExpectancy: 72.33},
	{Province: "Sulawesi Utara", LifeExpectancy: 72.12},
	{Province: "Jawa Timur", LifeExpectancy: 71.77},
	{Province: "Sumatera Barat", LifeExpectancy: 70.56},
	{Province: "Sumatera Utara", LifeExpectancy: 69.44},
	{Province: "Kalimantan Selatan", LifeExpectancy: 68.79},
	{Province: "Nusa Tenggara Barat", LifeExpectancy: 67.81},
	{Province: "Nusa Tenggara Timur", LifeExpectancy: 66.71},
	{Province: "Papua Barat", LifeExpectancy: 66.49},
	{Province: "Papua", LifeExpectancy: 66.02},
}

// LookupProvince returns the record for name, if any.
func LookupProvince(name string) (ProvinceLifeExpectancy, bool) {
	if name == "" || name == ProvinceOther {
		return ProvinceLifeExpectancy{}, false
	}
	for _, p := range ProvinceLifeExpectancies {
		if p.Province == name {
			return p, true
		}
	}
	return ProvinceLifeExpectancy{}, false
}
