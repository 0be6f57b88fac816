package common

import "testing"

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name           string
		args           map[string]interface{}
		defaultAccount string
		want           string
	}{
		{
			name:           "account provided",
			args:           map[string]interface{}{"account": "work"},
			defaultAccount: "default",
			want:           "work",
		},
		{
			name:           "account missing",
			args:           map[string]interface{}{},
			defaultAccount: "default",
			want:           "default",
		},
		{
			name:           "account empty",
			args:           map[string]interface{}{"account": ""},
			defaultAccount: "default",
			want:           "default",
		},
		{
			name:           "account wrong type",
			args:           map[string]interface{}{"account": 42},
			defaultAccount: "default",
			want:           "default",
		},
		{
			name:           "nil args",
			args:           nil,
			defaultAccount: "personal",
			want:           "personal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAccountFromArgs(tt.args, tt.defaultAccount); got != tt.want {
				t.Errorf("GetAccountFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}
