package oneshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/remindme/internal/core/temporal"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "", want: nil},
		{line: "   ", want: nil},
		{line: "5 Tea", want: []string{"5", "Tea"}},
		{line: `5 Tea "Steep done"`, want: []string{"5", "Tea", "Steep done"}},
		{line: `5  "Green tea"  now`, want: []string{"5", "Green tea", "now"}},
		{line: `say "it's" ok`, want: []string{"say", "it's", "ok"}},
		{line: "300 tea don't forget", want: []string{"300", "tea", "don't", "forget"}},
		{line: "2099-01-01 10:00:00 Lunch Joe's", want: []string{"2099-01-01", "10:00:00", "Lunch", "Joe's"}},
		{line: `'single' quotes`, want: []string{"'single'", "quotes"}},
		{line: `a""b`, want: []string{`a""b`}},
		{line: `say 5"`, want: []string{"say", `5"`}},
		{line: `x ""`, want: []string{"x", ""}},
		{line: "tab\tseparated\nline", want: []string{"tab", "separated", "line"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_UnterminatedQuote(t *testing.T) {
	_, err := Tokenize(`5 Tea "Steep done`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestParseTimer(t *testing.T) {
	args, err := Tokenize(`5 Tea "Steep done"`)
	require.NoError(t, err)

	tm, err := ParseTimer(args)
	require.NoError(t, err)
	assert.Equal(t, "Tea", tm.Name)
	assert.Equal(t, 5*time.Second, tm.Due)
	require.NotNil(t, tm.Message)
	assert.Equal(t, "Steep done", *tm.Message)
	assert.Equal(t, "Timer: Tea\nMessage: Steep done", tm.Text())
}

func TestParseTimer_Defaults(t *testing.T) {
	tm, err := ParseTimer([]string{"30"})
	require.NoError(t, err)
	assert.Equal(t, "timer", tm.Name)
	assert.Nil(t, tm.Message)
}

func TestParseTimer_MessageJoinsRemainingArgs(t *testing.T) {
	tm, err := ParseTimer([]string{"30", "Tea", "Steep", "is", "done"})
	require.NoError(t, err)
	require.NotNil(t, tm.Message)
	assert.Equal(t, "Steep is done", *tm.Message)
}

func TestParseTimer_Errors(t *testing.T) {
	_, err := ParseTimer(nil)
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = ParseTimer([]string{"-5", "Tea"})
	assert.ErrorIs(t, err, temporal.ErrNegative)

	_, err = ParseTimer([]string{"Tea", "5"})
	assert.ErrorIs(t, err, temporal.ErrInvalidFormat)
}

func TestParseEvent(t *testing.T) {
	now := time.Date(2031, 6, 1, 9, 0, 0, 0, time.Local)

	ev, err := ParseEvent([]string{"2031-06-02", "10:00:00", "Dentist", "Main st", "bring", "card"}, now)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", ev.Name)
	assert.Equal(t, "2031-06-02 10:00:00", temporal.FormatEventTime(ev.DueAt))
	require.NotNil(t, ev.Location)
	assert.Equal(t, "Main st", *ev.Location)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "bring card", *ev.Message)

	ev, err = ParseEvent([]string{"2031-06-02", "10:00:00", "Dentist"}, now)
	require.NoError(t, err)
	assert.Nil(t, ev.Location)
	assert.Nil(t, ev.Message)
}

func TestParseEvent_Errors(t *testing.T) {
	now := time.Date(2031, 6, 1, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no args", args: nil, wantErr: ErrMissingArgument},
		{name: "date only", args: []string{"2031-06-02"}, wantErr: ErrMissingArgument},
		{name: "no name", args: []string{"2031-06-02", "10:00:00"}, wantErr: ErrMissingArgument},
		{name: "past", args: []string{"2000-01-01", "00:00:00", "Old"}, wantErr: temporal.ErrInThePast},
		{name: "past without name", args: []string{"2000-01-01", "00:00:00"}, wantErr: temporal.ErrInThePast},
		{name: "bad date", args: []string{"01/02/2031", "10:00:00", "X"}, wantErr: temporal.ErrInvalidFormat},
		{name: "order swapped", args: []string{"Dentist", "2031-06-02", "10:00:00"}, wantErr: temporal.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent(tt.args, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
