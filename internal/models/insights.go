package models

// RiskLevel grades a weather-driven disease risk
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// WeatherAlert is one disease risk derived from the local forecast
type WeatherAlert struct {
	RiskLevel          RiskLevel `json:"riskLevel"`
	DiseaseName        string    `json:"diseaseName"`
	Reason             string    `json:"reason"`
	PreventativeAction string    `json:"preventativeAction"`
}

// WeatherAlertsInfo is the result of a weather risk analysis
type WeatherAlertsInfo struct {
	LocationName   string         `json:"locationName"`
	OverallSummary string         `json:"overallSummary"`
	Alerts         []WeatherAlert `json:"alerts"`
	Error          string         `json:"error,omitempty"`
}

// SectionStatus is the health verdict for a stretch of video
type SectionStatus string

const (
	SectionHealthy    SectionStatus = "healthy"
	SectionSuspicious SectionStatus = "suspicious"
	SectionDiseased   SectionStatus = "diseased"
)

// VideoAnalysisSection covers one time range of a field video
type VideoAnalysisSection struct {
	StartTime   float64       `json:"startTime"`
	EndTime     float64       `json:"endTime"`
	Status      SectionStatus `json:"status"`
	Description string        `json:"description"`
	Issues      []string      `json:"issues"`
}

// DensityStatus grades planting density
type DensityStatus string

const (
	DensityOptimal DensityStatus = "optimal"
	DensityDense   DensityStatus = "dense"
	DensitySparse  DensityStatus = "sparse"
)

type PlantingDensityAnalysis struct {
	Status         DensityStatus `json:"status"`
	Recommendation string        `json:"recommendation"`
}

// VideoAnalysisResult is the result of a field video inspection
type VideoAnalysisResult struct {
	OverallSummary  string                  `json:"overallSummary"`
	PlantingDensity PlantingDensityAnalysis `json:"plantingDensity"`
	Sections        []VideoAnalysisSection  `json:"sections"`
	Error           string                  `json:"error,omitempty"`
}

// TaskType is the kind of work scheduled in a crop calendar
type TaskType string

const (
	TaskFertilizing TaskType = "fertilizing"
	TaskWatering    TaskType = "watering"
	TaskSpraying    TaskType = "spraying"
	TaskPruning     TaskType = "pruning"
	TaskInspection  TaskType = "inspection"
	TaskHarvest     TaskType = "harvest"
	TaskOther       TaskType = "other"
)

type CalendarTask struct {
	TaskType    TaskType `json:"taskType"`
	Description string   `json:"description"`
}

// CalendarEvent is one week of a crop calendar
type CalendarEvent struct {
	Week      int            `json:"week"`
	DateRange string         `json:"dateRange"`
	Stage     string         `json:"stage"`
	Tasks     []CalendarTask `json:"tasks"`
}

// CropCalendarResult is a week-by-week schedule for a crop
type CropCalendarResult struct {
	CropName     string          `json:"cropName"`
	LocationName string          `json:"locationName"`
	PlantingDate string          `json:"plantingDate"`
	Schedule     []CalendarEvent `json:"schedule"`
	Error        string          `json:"error,omitempty"`
}

// FieldBriefing bundles the weather alerts and crop calendar for one field
type FieldBriefing struct {
	Alerts   *WeatherAlertsInfo  `json:"alerts"`
	Calendar *CropCalendarResult `json:"calendar"`
}
