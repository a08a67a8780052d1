package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-a", "-d", "-c", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "empty input",
			args: []string{},
			want: []string{},
		},
		{
			name: "separate values",
			args: []string{"-a", ":8800", "-d", "postgres://db"},
			want: []string{"-a", ":8800", "-d", "postgres://db"},
		},
		{
			name: "equals form",
			args: []string{"-a=:8800", "--config=conf.json"},
			want: []string{"-a=:8800"},
		},
		{
			name: "unknown flags dropped with their values",
			args: []string{"-x", "junk", "-a", ":9",
				"-test.run", "TestFoo"},
			want: []string{"-a", ":9"},
		},
		{
			name: "flag followed by another flag keeps no value",
			args: []string{"-a", "-d", "dsn"},
			want: []string{"-a", "-d", "dsn"},
		},
		{
			name: "config flag variants",
			args: []string{"-c", "conf.json", "-config=other.json"},
			want: []string{"-c", "conf.json", "-config=other.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flags", []string{"cmd"}, ""},
		{"short flag", []string{"cmd", "-c", "conf.json"}, "conf.json"},
		{"long flag", []string{"cmd", "-config", "server.json"}, "server.json"},
		{"long flag equals", []string{"cmd", "-config=server.json"}, "server.json"},
		{"mixed with other flags", []string{"cmd", "-a", ":8800", "-c", "conf.json"}, "conf.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := os.Args
			os.Args = tt.args
			t.Cleanup(func() { os.Args = saved })

			var got string
			require.NotPanics(t, func() { got = JsonConfigFlags() })
			assert.Equal(t, tt.want, got)
		})
	}
}
