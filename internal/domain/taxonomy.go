package domain

// Category classifies an activity in the shared catalog.
type Category string

const (
	CategoryArtsCrafts           Category = "arts_crafts"
	CategoryScienceExperiments   Category = "science_experiments"
	CategoryOutdoorActivities    Category = "outdoor_activities"
	CategoryCookingBaking        Category = "cooking_baking"
	CategoryReadingLiteracy      Category = "reading_literacy"
	CategoryMathNumbers          Category = "math_numbers"
	CategoryMusicDance           Category = "music_dance"
	CategoryPhysicalExercise     Category = "physical_exercise"
	CategoryBuildingConstruction Category = "building_construction"
	CategoryDramaticPlay         Category = "dramatic_play"
	CategorySensoryPlay          Category = "sensory_play"
	CategoryNatureExploration    Category = "nature_exploration"
)

// Categories lists every valid activity category.
var Categories = []Category{
	CategoryArtsCrafts,
	CategoryScienceExperiments,
	CategoryOutdoorActivities,
	CategoryCookingBaking,
	CategoryReadingLiteracy,
	CategoryMathNumbers,
	CategoryMusicDance,
	CategoryPhysicalExercise,
	CategoryBuildingConstruction,
	CategoryDramaticPlay,
	CategorySensoryPlay,
	CategoryNatureExploration,
}

// Valid reports whether the category belongs to the catalog taxonomy.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Skill identifies a developmental skill an activity targets.
type Skill string

const (
	SkillCreativity          Skill = "creativity"
	SkillCriticalThinking    Skill = "critical_thinking"
	SkillFineMotor           Skill = "fine_motor"
	SkillGrossMotor          Skill = "gross_motor"
	SkillSocialEmotional     Skill = "social_emotional"
	SkillLanguageDevelopment Skill = "language_development"
	SkillProblemSolving      Skill = "problem_solving"
	SkillSensoryProcessing   Skill = "sensory_processing"
	SkillSelfRegulation      Skill = "self_regulation"
	SkillCollaboration       Skill = "collaboration"
	SkillIndependence        Skill = "independence"
	SkillCuriosity           Skill = "curiosity"
)

// Skills lists every valid skill tag.
var Skills = []Skill{
	SkillCreativity,
	SkillCriticalThinking,
	SkillFineMotor,
	SkillGrossMotor,
	SkillSocialEmotional,
	SkillLanguageDevelopment,
	SkillProblemSolving,
	SkillSensoryProcessing,
	SkillSelfRegulation,
	SkillCollaboration,
	SkillIndependence,
	SkillCuriosity,
}

// Valid reports whether the skill belongs to the taxonomy.
func (s Skill) Valid() bool {
	for _, known := range Skills {
		if s == known {
			return true
		}
	}
	return false
}

// Difficulty orders activities from beginner to advanced.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether the difficulty level is known.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// MessLevel orders activities by expected cleanup effort.
type MessLevel string

const (
	MessNone     MessLevel = "none"
	MessMinimal  MessLevel = "minimal"
	MessModerate MessLevel = "moderate"
	MessHigh     MessLevel = "high"
)

// Valid reports whether the mess level is known.
func (m MessLevel) Valid() bool {
	switch m {
	case MessNone, MessMinimal, MessModerate, MessHigh:
		return true
	}
	return false
}

// SupervisionLevel describes how much adult attention an activity needs.
type SupervisionLevel string

const (
	SupervisionIndependent SupervisionLevel = "independent"
	SupervisionMinimal     SupervisionLevel = "minimal_supervision"
	SupervisionActive      SupervisionLevel = "active_supervision"
	SupervisionOneOnOne    SupervisionLevel = "one_on_one_required"
)

// Valid reports whether the supervision level is known.
func (s SupervisionLevel) Valid() bool {
	switch s {
	case SupervisionIndependent, SupervisionMinimal, SupervisionActive, SupervisionOneOnOne:
		return true
	}
	return false
}

// Sex records the child's sex as captured during onboarding.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether the value is a known sex.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}
