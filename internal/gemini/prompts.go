package gemini

import (
	"fmt"
	"strings"

	"farm-assistant/internal/models"
)

// ChatSystemInstruction is the persona of the chat assistant
const ChatSystemInstruction = `You are Flora, an expert agricultural assistant. Your tone is friendly, encouraging and knowledgeable.
Give helpful, concise advice about everything related to farming and gardening.
Use markdown for lists or emphasis when it helps.`

const identifyPrompt = `Identify the plant in this image. Give its common and scientific name and, when possible, its specific variety (for example "cherry tomato").
Provide a short description and detailed care instructions for watering, sunlight, soil, fertilizer and pruning.
State whether it is poisonous to pets or humans.
If you cannot identify the plant, return an object with "plantName" set to "unknown" and an "error" field explaining why.`

const diagnosePrompt = `Analyze the plant in this image and find every problem: diseases, pests and nutrient deficiencies.
For each problem give its type, name, description, severity (low/medium/high/critical) with a percentage, possible causes and prevention.
For treatment list organic options. For chemical treatment suggest products commonly available in the region, each with its name, chemical group and usage instructions.
Add a clear note on resistance management by rotating between chemical groups.
Finish with an overall summary of the plant's health. Answer following the JSON schema.`

const videoPrompt = `You are an agricultural expert inspecting a field through a video. Analyze it carefully:
1. Section by section: split the video into meaningful time sections. For each give the health status (healthy, suspicious, diseased), a detailed description of what you see, and the specific issues found (disease, pests, water stress and so on).
2. Planting density: assess how densely the plants are planted (optimal, dense, sparse) and give one practical recommendation, such as thinning.
3. Overall summary: summarize the health of the whole field or row shown.
Answer in JSON following the schema.`

func buildWeatherPrompt(pos models.Position) string {
	return fmt.Sprintf(`Using the current weather and the forecast for the next 5 days at latitude %.5f and longitude %.5f, analyze the risk of outbreaks of common garden plant diseases (such as powdery mildew, black spot and rust).
Include the location name, an overall summary and a list of specific alerts. Each alert has a risk level (low, medium, high), the disease name, the weather reason and a suggested preventative action.
Answer in JSON.`, pos.Latitude, pos.Longitude)
}

func buildCalendarPrompt(crop, plantingDate string, pos models.Position) string {
	return fmt.Sprintf(`Create a detailed crop calendar for %q planted on %q in the region at latitude %.5f and longitude %.5f.
Consider the climate and the usual growing season of the region.
The calendar schedules key tasks such as fertilizing, watering, preventative spraying, pruning and harvest, grouped by week since planting. Give the growth stage for each week.
Answer in JSON.`, crop, plantingDate, pos.Latitude, pos.Longitude)
}

func buildTreatmentPrompt(originalDiagnosis string) string {
	return fmt.Sprintf(`You are an agricultural expert. A plant diagnosed with %q has been treated.
The first image shows the plant at diagnosis time and the second shows the same plant after treatment.
Compare them and assess how effective the treatment was: has the plant improved, stayed the same or got worse?
Give a short, clear analysis and further recommendations if needed.`, originalDiagnosis)
}

func buildTitlePrompt(firstMessage string) string {
	return fmt.Sprintf(`Create a short, descriptive title (at most 5 words) for a chat that starts with this question: %q. Return only the title.`, firstMessage)
}

// cleanJSON strips the markdown fences the model sometimes wraps JSON in
func cleanJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// cleanTitle removes quotes around a generated title
func cleanTitle(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(text), `"`, ""))
}
