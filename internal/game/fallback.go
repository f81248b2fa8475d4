package game

import (
	"fmt"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/ladder"
)

// fallbackBank holds one vetted question per level. It is served whenever the question source
// fails, times out or returns something unusable, so a game can always continue.
var fallbackBank = [ladder.Levels]domain.Question{
	{
		Prompt:        "What does HVAC stand for?",
		Options:       []string{"Heating, Ventilation, and Air Conditioning", "High Voltage Alternating Current", "Home Ventilation and Cooling", "Heat, Vapor, and Air Control"},
		CorrectAnswer: "Heating, Ventilation, and Air Conditioning",
		Category:      "HVAC Systems",
		Explanation:   "HVAC stands for Heating, Ventilation, and Air Conditioning.",
		HostHint:      "Think about what keeps buildings comfortable in all seasons.",
	},
	{
		Prompt:        "Which material is most commonly used as a vapor retarder in walls?",
		Options:       []string{"Polyethylene sheet", "Gypsum board", "Fiberglass batt", "Clay brick"},
		CorrectAnswer: "Polyethylene sheet",
		Category:      "Building Envelope",
		Explanation:   "Polyethylene sheet has very low vapor permeance.",
	},
	{
		Prompt:        "What does the R-value of insulation measure?",
		Options:       []string{"Resistance to heat flow", "Resistance to moisture", "Fire rating", "Sound absorption"},
		CorrectAnswer: "Resistance to heat flow",
		Category:      "Insulation",
		Explanation:   "R-value is thermal resistance; higher values insulate better.",
	},
	{
		Prompt:        "Which direction does heat naturally flow?",
		Options:       []string{"From warm to cold", "From cold to warm", "Only upward", "Only downward"},
		CorrectAnswer: "From warm to cold",
		Category:      "Building Science",
		Explanation:   "Heat moves from higher to lower temperature.",
	},
	{
		Prompt:        "What is the main job of an air barrier?",
		Options:       []string{"Stop uncontrolled air leakage", "Add structural strength", "Block sunlight", "Drain rainwater"},
		CorrectAnswer: "Stop uncontrolled air leakage",
		Category:      "Building Envelope",
		Explanation:   "Air barriers control airflow through the envelope.",
	},
	{
		Prompt:        "What is the dew point?",
		Options:       []string{"The temperature at which water vapor condenses", "The temperature at which water freezes", "The highest daily humidity", "The point where two walls meet"},
		CorrectAnswer: "The temperature at which water vapor condenses",
		Category:      "Moisture Management",
		Explanation:   "Below the dew point air cannot hold its moisture as vapor.",
	},
	{
		Prompt:        "What does a blower door test measure?",
		Options:       []string{"Building airtightness", "Duct static pressure", "Window U-factor", "Roof load capacity"},
		CorrectAnswer: "Building airtightness",
		Category:      "Testing",
		Explanation:   "A blower door depressurizes the building to measure leakage.",
	},
	{
		Prompt:        "What is thermal bridging?",
		Options:       []string{"Heat flow through a more conductive path in the envelope", "A bridge that expands with heat", "Radiant heat between floors", "Heat recovered by a ventilator"},
		CorrectAnswer: "Heat flow through a more conductive path in the envelope",
		Category:      "Insulation",
		Explanation:   "Studs, slab edges and fasteners bypass the insulation layer.",
	},
	{
		Prompt:        "What does SEER rate on an air conditioner?",
		Options:       []string{"Seasonal cooling efficiency", "Sound level", "Refrigerant charge", "Maximum airflow"},
		CorrectAnswer: "Seasonal cooling efficiency",
		Category:      "HVAC Systems",
		Explanation:   "SEER is the Seasonal Energy Efficiency Ratio.",
	},
	{
		Prompt:        "What does an ERV exchange besides heat?",
		Options:       []string{"Moisture", "Refrigerant", "Combustion gases", "Electrical charge"},
		CorrectAnswer: "Moisture",
		Category:      "Ventilation",
		Explanation:   "An energy recovery ventilator transfers heat and moisture between air streams.",
	},
	{
		Prompt:        "Which ASHRAE standard covers ventilation for acceptable indoor air quality in residences?",
		Options:       []string{"62.2", "90.1", "55", "189.1"},
		CorrectAnswer: "62.2",
		Category:      "Codes & Standards",
		Explanation:   "ASHRAE 62.2 covers residential ventilation.",
	},
	{
		Prompt:        "What is the stack effect?",
		Options:       []string{"Air movement driven by indoor and outdoor temperature differences", "Stacking of insulation layers", "Pressure from stacked floors", "Chimney draft from a fan"},
		CorrectAnswer: "Air movement driven by indoor and outdoor temperature differences",
		Category:      "Building Science",
		Explanation:   "Buoyancy of warm air creates pressure differences over building height.",
	},
	{
		Prompt:        "What unit is vapor permeance commonly expressed in?",
		Options:       []string{"Perms", "Pascals", "BTUs", "Lumens"},
		CorrectAnswer: "Perms",
		Category:      "Moisture Management",
		Explanation:   "A perm is one grain of water vapor per hour per square foot per inch of mercury.",
	},
	{
		Prompt:        "What does a Passive House ACH50 limit of 0.6 describe?",
		Options:       []string{"Air changes per hour at 50 pascals", "Heat loss at 50 degrees", "Insulation at 50 millimetres", "Ventilation at 50 percent"},
		CorrectAnswer: "Air changes per hour at 50 pascals",
		Category:      "High Performance Buildings",
		Explanation:   "ACH50 is measured with a blower door at 50 Pa.",
	},
	{
		Prompt:        "Which quantity combines conduction, convection and radiation losses through a window assembly?",
		Options:       []string{"U-factor", "Visible transmittance", "Solar heat gain coefficient", "Condensation resistance"},
		CorrectAnswer: "U-factor",
		Category:      "Fenestration",
		Explanation:   "U-factor is the overall heat transfer coefficient of the assembly.",
	},
}

// FallbackQuestion returns the built-in question for level. It never fails for a valid level.
func FallbackQuestion(level int) domain.Question {
	if !ladder.Valid(level) {
		level = ladder.FirstLevel
	}
	q := fallbackBank[level-1].Clone()
	q.ID = fmt.Sprintf("fallback_%d", level)
	q.Difficulty = ladder.DifficultyFor(level)
	return q
}
