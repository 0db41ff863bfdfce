package classifier

// ClassLabels is the closed set of waste categories the model predicts.
// Order matches the model's output layer.
var ClassLabels = []string{
	"Cardboard",
	"Food",
	"Glass",
	"Metal",
	"Miscellaneous",
	"Paper",
	"Plastic",
	"Textile",
	"Vegetation",
}

var classLabelSet = func() map[string]bool {
	set := make(map[string]bool, len(ClassLabels))
	for _, label := range ClassLabels {
		set[label] = true
	}
	return set
}()

// IsValidLabel reports whether label belongs to the closed class set.
func IsValidLabel(label string) bool {
	return classLabelSet[label]
}
