package join

import (
	"fmt"

	"github.com/go-sif/splitmerge"
)

// CollisionSuffix is appended to a target column whose name is already used by the left Schema
const CollisionSuffix = "_1"

// JoinSchema returns the Schema of joined Records: every left column, followed
// by every target column except rightKey. Colliding target columns are renamed
// with CollisionSuffix (repeatedly, until the name is free).
func JoinSchema(left splitmerge.Schema, target splitmerge.Schema, rightKey string) (splitmerge.Schema, error) {
	joined := left.Clone()
	err := target.ForEachColumn(func(name string, col splitmerge.Column) error {
		if name == rightKey {
			return nil
		}
		newName := name
		for joined.HasColumn(newName) {
			newName = newName + CollisionSuffix
		}
		if _, err := joined.CreateColumn(newName, col.Type()); err != nil {
			return fmt.Errorf("Unable to add target column %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}
