package rdw

import "encoding/json"

// SODA dataset identifiers on opendata.rdw.nl.
const (
	DatasetAreas            = "b3us-f26s"
	DatasetAreaRegulations  = "qtex-qwd8"
	DatasetTimeFrames       = "ixf8-gtwq"
	DatasetFareParts        = "534e-5vdg"
	DatasetRegulations      = "yefi-qfiq"
	DatasetFareCalculations = "nfzq-8g7y"
)

// Area is a parking area specification (GEBIED).
type Area struct {
	ManagerID string          `json:"areamanagerid"`
	AreaID    string          `json:"areaid"`
	Desc      string          `json:"areadesc"`
	Geometry  json.RawMessage `json:"areageometryaswgs84,omitempty"`
}

// AreaRegulation links an area to a regulation for a validity period.
type AreaRegulation struct {
	ManagerID    string `json:"areamanagerid"`
	AreaID       string `json:"areaid"`
	RegulationID string `json:"regulationid"`
	UsageID      string `json:"usageid"`
	StartDate    string `json:"startdatearearegulation"`
	EndDate      string `json:"enddatearearegulation"`
}

// TimeFrame is a time window of a regulation priced by a fare calculation.
type TimeFrame struct {
	ManagerID           string `json:"areamanagerid"`
	RegulationID        string `json:"regulationid"`
	Day                 string `json:"daytimeframe"`
	Start               string `json:"starttimetimeframe"`
	End                 string `json:"endtimetimeframe"`
	StartDate           string `json:"startdatetimeframe"`
	FareCalculationCode string `json:"farecalculationcode"`
	MaxDuration         string `json:"maxdurationright"`
}

// FarePart is the amount charged per step for a fare calculation.
type FarePart struct {
	ManagerID           string `json:"areamanagerid"`
	FareCalculationCode string `json:"farecalculationcode"`
	StartDate           string `json:"startdatefarepart"`
	Amount              string `json:"amountfarepart"`
	StepSize            string `json:"stepsizefarepart"`
}

// Regulation describes a regulation and its type.
type Regulation struct {
	ManagerID    string `json:"areamanagerid"`
	RegulationID string `json:"regulationid"`
	Desc         string `json:"regulationdesc"`
	Type         string `json:"regulationtype"`
}

// FareCalculation describes a fare calculation code.
type FareCalculation struct {
	ManagerID string `json:"areamanagerid"`
	Code      string `json:"farecalculationcode"`
	Desc      string `json:"farecalculationdesc"`
}

// Dataset holds the raw records of all six datasets.
type Dataset struct {
	Areas            []Area
	AreaRegulations  []AreaRegulation
	TimeFrames       []TimeFrame
	FareParts        []FarePart
	Regulations      []Regulation
	FareCalculations []FareCalculation
}
