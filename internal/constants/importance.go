package constants

// ImportanceType selects how variable importance is measured.
type ImportanceType string

const (
	// ImportancePermutation is the increase in out-of-bag MSE after permuting a feature (%IncMSE).
	ImportancePermutation ImportanceType = "permutation"

	// ImportancePurity is the total decrease in node RSS from splits on a feature (IncNodePurity).
	ImportancePurity ImportanceType = "purity"
)

// Valid returns true if the importance type is a recognized value.
func (t ImportanceType) Valid() bool {
	switch t {
	case ImportancePermutation, ImportancePurity:
		return true
	}
	return false
}

// String returns the string representation of the importance type.
func (t ImportanceType) String() string {
	return string(t)
}
