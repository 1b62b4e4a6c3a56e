package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		name  string
		verb  Verb
		table string
		want  string
	}{
		{"save plural", VerbSave, "users", "saveUser"},
		{"update plural", VerbUpdate, "users", "updateUser"},
		{"delete plural", VerbDelete, "users", "deleteUser"},
		{"multiword table", VerbSave, "user_records", "saveUser_record"},
		{"already singular", VerbSave, "person", "savePerson"},
		{"only one trailing s dropped", VerbUpdate, "address", "updateAddres"},
		{"single letter", VerbDelete, "x", "deleteX"},
		{"underscore first", VerbSave, "_logs", "save_log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionFor(tt.verb, tt.table))
		})
	}
}
