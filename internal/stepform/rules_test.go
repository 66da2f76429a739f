package stepform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldRules(t *testing.T) {
	rules := FieldRules(map[string]string{
		"email":   "required,email",
		"name":    "required,min=2",
		"package": "omitempty,oneof=basic premium",
		"note":    "",
	})

	tests := []struct {
		name string
		data Data
		want FieldErrors
	}{
		{
			name: "all valid",
			data: Data{"email": "ada@example.com", "name": "Ada", "package": "premium"},
		},
		{
			name: "optional field absent",
			data: Data{"email": "ada@example.com", "name": "Ada"},
		},
		{
			name: "missing required",
			data: Data{},
			want: FieldErrors{"email": "is required", "name": "is required"},
		},
		{
			name: "bad values",
			data: Data{"email": "not-an-email", "name": "A", "package": "gold"},
			want: FieldErrors{
				"email":   "must be a valid email address",
				"name":    "must be at least 2",
				"package": "must be one of basic, premium",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules(context.Background(), tt.data)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRejected)

			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.want, fe)
		})
	}
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := FieldErrors{"name": "is required", "email": "is required"}
	assert.Equal(t, "email is required; name is required", fe.Error())
}

func TestRequired(t *testing.T) {
	v := Required("name", "photo")

	assert.NoError(t, v(context.Background(), Data{"name": "Ada", "photo": fakeFile{name: "a.png"}}))

	err := v(context.Background(), Data{"name": "   ", "photo": nil})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldErrors{"name": "is required", "photo": "is required"}, fe)
}

func TestAll(t *testing.T) {
	backendDown := errors.New("lookup failed")

	tests := []struct {
		name    string
		fns     []ValidateFunc
		wantErr error
		wantFE  FieldErrors
	}{
		{name: "empty", fns: nil},
		{name: "nil entries skipped", fns: []ValidateFunc{nil, pass}},
		{
			name:   "merges, first message wins",
			fns:    []ValidateFunc{Required("name"), FieldRules(map[string]string{"name": "required", "uid": "required"})},
			wantFE: FieldErrors{"name": "is required", "uid": "is required"},
		},
		{
			name: "non-field error stops the chain",
			fns: []ValidateFunc{
				func(context.Context, Data) error { return backendDown },
				Required("name"),
			},
			wantErr: backendDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := All(tt.fns...)(context.Background(), Data{})
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantFE != nil:
				var fe FieldErrors
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.wantFE, fe)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckRule(t *testing.T) {
	tests := []struct {
		tag     string
		wantErr bool
	}{
		{"", false},
		{"required", false},
		{"required,email", false},
		{"omitempty,min=3,max=40", false},
		{"oneof=basic premium", false},
		{"requird", true},
		{"required,bogus_rule", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			err := CheckRule(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
