package trackio

// Track table columns.
const (
	ColFrame           = "frame"
	ColTrackID         = "trackId"
	ColLineageID       = "lineageId"
	ColParentTrackID   = "parentTrackId"
	ColPredictedClass  = "predictedClass"
	ColProbG1G2        = "Probability_G1G2"
	ColProbS           = "Probability_S"
	ColProbM           = "Probability_M"
	ColMeanIntensity   = "meanIntensity"
	ColBackgroundMean  = "backgroundMean"
	ColEmerging        = "emerging"
	ColMajorAxis       = "majorAxis"
	ColMinorAxis       = "minorAxis"
	ColContinuousLabel = "continuousLabel"
	ColResolvedClass   = "resolvedClass"
	ColName            = "name"
)

// TrackColumns is the column order of written track tables.
var TrackColumns = []string{
	ColFrame, ColTrackID, ColLineageID, ColParentTrackID, ColPredictedClass,
	ColProbG1G2, ColProbS, ColProbM, ColMeanIntensity, ColBackgroundMean,
	ColEmerging, ColMajorAxis, ColMinorAxis, ColContinuousLabel,
}

// ResolvedColumns extends TrackColumns with the resolution output.
var ResolvedColumns = append(append([]string(nil), TrackColumns...), ColResolvedClass, ColName)

// PhaseColumns is the column order of the phase table.
var PhaseColumns = []string{"track", "type", "length", "arrest", "G1", "S", "M", "G2", "parent", "impreciseExit"}

// AnnotationColumns is the column order of the annotation table.
var AnnotationColumns = []string{"track", "mitosisParent", "mEntry", "mExit"}

// aliases maps header spellings produced by the detection and tracking
// tools onto canonical column names.
var aliases = map[string]string{
	"predicted_class":      ColPredictedClass,
	"Probability of G1/G2": ColProbG1G2,
	"Probability of S":     ColProbS,
	"Probability of M":     ColProbM,
	"mean_intensity":       ColMeanIntensity,
	"background_mean":      ColBackgroundMean,
	"major_axis":           ColMajorAxis,
	"minor_axis":           ColMinorAxis,
	"continuous_label":     ColContinuousLabel,
}

var requiredColumns = []string{ColFrame, ColTrackID, ColParentTrackID, ColPredictedClass}

func canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}
