package scripted_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/parlance/pkg/adapters/scripted"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "array",
			doc:  `[{"message":"hi","next_state":"end"}, "not json at all"]`,
			want: []string{`{"message":"hi","next_state":"end"}`, "not json at all"},
		},
		{
			name: "ndjson",
			doc:  "{\"message\":\"one\"}\n\n{\"message\":\"two\"}\n",
			want: []string{`{"message":"one"}`, `{"message":"two"}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scripted.Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := scripted.Parse([]byte("  "))
	assert.Error(t, err)

	_, err = scripted.Parse([]byte("{\"a\":1}\n{broken"))
	assert.ErrorContains(t, err, "line 2")

	_, err = scripted.Parse([]byte("[1,"))
	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	c := scripted.New([]string{"a", "b"})
	ctx := context.Background()

	out, err := c.Complete(ctx, model.Request{Model: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	out, err = c.Complete(ctx, model.Request{Model: "m2"})
	require.NoError(t, err)
	assert.Equal(t, "b", out)

	_, err = c.Complete(ctx, model.Request{})
	assert.ErrorIs(t, err, scripted.ErrExhausted)
	assert.Len(t, c.Requests(), 3)
	assert.Equal(t, "m2", c.Requests()[1].Model)
}

func TestClient_Loop(t *testing.T) {
	c := scripted.New([]string{"a", "b"}, scripted.WithLoop())
	var got []string
	for range 5 {
		out, err := c.Complete(context.Background(), model.Request{})
		require.NoError(t, err)
		got = append(got, out)
	}
	assert.Equal(t, []string{"a", "b", "a", "b", "a"}, got)

	_, err := scripted.New(nil, scripted.WithLoop()).Complete(context.Background(), model.Request{})
	assert.ErrorIs(t, err, scripted.ErrExhausted)
}

func TestClient_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scripted.New([]string{"a"}).Complete(ctx, model.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"message":"from file"}`+"\n"), 0o644))

	c, err := scripted.Load(path)
	require.NoError(t, err)
	out, err := c.Complete(context.Background(), model.Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"from file"}`, out)

	_, err = scripted.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
