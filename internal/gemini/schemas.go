package gemini

import "github.com/google/generative-ai-go/genai"

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func enum(description string, values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description, Enum: values}
}

func number(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: description, Items: &genai.Schema{Type: genai.TypeString}}
}

func object(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}

func array(description string, items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: description, Items: items}
}

var plantInfoSchema = object(map[string]*genai.Schema{
	"plantName":      str("Common name of the plant."),
	"scientificName": str("Scientific (Latin) name of the plant."),
	"variety":        str("Specific variety or cultivar when it can be told apart, e.g. 'cherry tomato'. Empty otherwise."),
	"description":    str("Short, engaging description of the plant."),
	"isPoisonous":    {Type: genai.TypeBoolean, Description: "True if the plant is toxic to common pets or humans."},
	"careInstructions": object(map[string]*genai.Schema{
		"watering":   str("Watering frequency and amount."),
		"sunlight":   str("Light requirements."),
		"soil":       str("Recommended soil type, pH and drainage."),
		"fertilizer": str("Fertilizing schedule and fertilizer type."),
		"pruning":    str("Pruning advice."),
	}, "watering", "sunlight", "soil", "fertilizer", "pruning"),
	"error": str("Error message when the plant cannot be identified."),
}, "plantName", "scientificName", "description", "isPoisonous", "careInstructions")

var diagnosisSchema = object(map[string]*genai.Schema{
	"diagnoses": array("Every problem found: diseases, pests and nutrient deficiencies.", object(map[string]*genai.Schema{
		"issueType":   enum("Kind of problem.", "disease", "pest", "nutrient deficiency"),
		"issueName":   str("Name of the problem."),
		"description": str("Symptoms and effects."),
		"severity": object(map[string]*genai.Schema{
			"level":      enum("Severity level.", "low", "medium", "high", "critical"),
			"percentage": number("Estimated share of the plant affected, 0-100."),
		}, "level", "percentage"),
		"possibleCauses": stringList("Likely causes."),
		"treatment": object(map[string]*genai.Schema{
			"organic": stringList("Organic treatments."),
			"chemical": array("Chemical treatments.", object(map[string]*genai.Schema{
				"name":          str("Product or active ingredient."),
				"chemicalGroup": str("Chemical group, for resistance management."),
				"instructions":  str("Usage instructions."),
			}, "name", "chemicalGroup", "instructions")),
			"resistanceManagementNote": str("Advice on rotating chemical groups to avoid resistance."),
		}, "organic", "chemical", "resistanceManagementNote"),
		"prevention": stringList("Prevention tips."),
	}, "issueType", "issueName", "description", "severity", "possibleCauses", "treatment", "prevention")),
	"overallHealthSummary": str("Overall summary of the plant's health."),
	"error":                str("Error message when nothing can be diagnosed."),
}, "diagnoses", "overallHealthSummary")

var weatherAlertsSchema = object(map[string]*genai.Schema{
	"locationName":   str("City or region of the coordinates."),
	"overallSummary": str("Summary of the weather and its overall effect on plants."),
	"alerts": array("Possible disease outbreak alerts.", object(map[string]*genai.Schema{
		"riskLevel":          enum("Outbreak risk.", "low", "medium", "high"),
		"diseaseName":        str("Plant disease at risk."),
		"reason":             str("Weather reason for the alert, e.g. high humidity."),
		"preventativeAction": str("Suggested preventative action."),
	}, "riskLevel", "diseaseName", "reason", "preventativeAction")),
	"error": str("Error message when no forecast could be analyzed."),
}, "locationName", "overallSummary", "alerts")

var videoAnalysisSchema = object(map[string]*genai.Schema{
	"overallSummary": str("Overall health of the field or row shown in the video."),
	"plantingDensity": object(map[string]*genai.Schema{
		"status":         enum("Planting density.", "optimal", "dense", "sparse"),
		"recommendation": str("Practical recommendation, e.g. thinning."),
	}, "status", "recommendation"),
	"sections": array("Time sections of the video.", object(map[string]*genai.Schema{
		"startTime":   number("Section start in seconds."),
		"endTime":     number("Section end in seconds."),
		"status":      enum("Health in this section.", "healthy", "suspicious", "diseased"),
		"description": str("Observations in this section."),
		"issues":      stringList("Specific problems seen in this section."),
	}, "startTime", "endTime", "status", "description", "issues")),
	"error": str("Error message when the video cannot be analyzed."),
}, "overallSummary", "plantingDensity", "sections")

var cropCalendarSchema = object(map[string]*genai.Schema{
	"cropName":     str("Crop given by the user."),
	"locationName": str("Name of the region."),
	"plantingDate": str("Planting date given by the user."),
	"schedule": array("", object(map[string]*genai.Schema{
		"week":      {Type: genai.TypeInteger, Description: "Week number since planting."},
		"dateRange": str("Date range of the week."),
		"stage":     str("Growth stage during the week."),
		"tasks": array("", object(map[string]*genai.Schema{
			"taskType":    enum("Kind of task.", "fertilizing", "watering", "spraying", "pruning", "inspection", "harvest", "other"),
			"description": str("What to do."),
		}, "taskType", "description")),
	}, "week", "dateRange", "stage", "tasks")),
	"error": str("Error message when no calendar can be produced."),
}, "cropName", "locationName", "plantingDate", "schedule")
