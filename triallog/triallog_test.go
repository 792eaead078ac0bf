package triallog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
)

var _ = fmt.Print

var sample_trials = []Trial{
	{
		SessionID: "abc", Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Axis: 0, Azimuth: 0.07,
		Response: layout.Up, Presented: layout.Up, Correct: true, NeutralU: 0.1977, NeutralV: 0.4689,
		Threshold: 0.064, NewThreshold: 0.05888, StepPercent: 8,
	},
	{
		SessionID: "abc", Time: time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC), Axis: 2, Azimuth: 4.83,
		Response: layout.Down, Presented: layout.Right, NeutralU: 0.1977, NeutralV: 0.4689,
		Threshold: 0.064, NewThreshold: 0.11, StepPercent: 8, TrialIndex: 0,
	},
}

var sample_finals = []Final{
	{Axis: 0, Name: "protan", Azimuth: 0.07, Value: 0.012, Reversals: 5, Spread: 0.001},
	{Axis: 1, Name: "deutan", Azimuth: 5.98, Value: 0.11, Fallback: true},
}

func record_all(t *testing.T, s staircase.Sink) {
	t.Helper()
	for _, tr := range sample_trials {
		require.NoError(t, s.RecordTrial(tr))
	}
	require.NoError(t, s.RecordSummary(sample_finals))
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	_, ok := m.Summary()
	require.False(t, ok)
	record_all(t, m)
	if diff := cmp.Diff(sample_trials, m.Trials()); diff != "" {
		t.Fatalf("unexpected trials (-want +got):\n%s", diff)
	}
	f, ok := m.Summary()
	require.True(t, ok)
	require.Equal(t, sample_finals, f)
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	c := NewCSV(&buf)
	require.NoError(t, c.RecordTrial(sample_trials[0]))
	// flushed per trial
	require.Contains(t, buf.String(), "Top Button,Hit,")
	require.NoError(t, c.RecordTrial(sample_trials[1]))
	require.NoError(t, c.RecordSummary(sample_finals))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	// csv.Reader skips the blank separator line
	require.Len(t, rows, 1+2+1+2)
	require.Equal(t, staircase.TrialHeader, rows[0])
	require.Equal(t, []string{"Bottom Button", "Miss", "0.4689", "0", "0.1977", "0.064"}, rows[2][:6])
	require.Equal(t, staircase.SummaryHeader, rows[3])
	require.Equal(t, []string{"5.98", "0.11", "0", "0", "true", "1", "deutan"}, rows[5])
}

func TestWorkbook(t *testing.T) {
	w, err := NewWorkbook()
	require.NoError(t, err)
	defer w.Close()
	record_all(t, w)
	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{TrialsSheet, SummarySheet}, f.GetSheetList())
	trials, err := f.GetRows(TrialsSheet)
	require.NoError(t, err)
	require.Len(t, trials, 3)
	require.Equal(t, staircase.TrialHeader, trials[0])
	assert.Equal(t, "Top Button", trials[1][0])
	assert.Equal(t, "Hit", trials[1][1])
	assert.Equal(t, "90", trials[1][3])
	assert.Equal(t, "abc", trials[2][12])
	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "protan", summary[1][6])
	assert.Equal(t, "TRUE", summary[2][4])
}

type fake_token struct {
	err     error
	timeout bool
}

func (f *fake_token) Wait() bool                     { return !f.timeout }
func (f *fake_token) WaitTimeout(time.Duration) bool { return !f.timeout }
func (f *fake_token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f *fake_token) Error() error { return f.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fake_client struct {
	messages []published
	token    fake_token
}

func (c *fake_client) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	return &c.token
}

func TestMQTT(t *testing.T) {
	client := &fake_client{}
	m := NewMQTT(client, "trivector/trials")
	record_all(t, m)
	require.Len(t, client.messages, 3)
	for _, msg := range client.messages {
		require.Equal(t, byte(QoS), msg.qos)
		require.False(t, msg.retained)
	}
	require.Equal(t, "trivector/trials", client.messages[0].topic)
	require.Equal(t, "trivector/trials/summary", client.messages[2].topic)

	var got Trial
	require.NoError(t, json.Unmarshal(client.messages[1].payload, &got))
	require.Equal(t, sample_trials[1], got)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &raw))
	require.Equal(t, 0.064, raw["threshold"])
	var finals []Final
	require.NoError(t, json.Unmarshal(client.messages[2].payload, &finals))
	require.Equal(t, sample_finals, finals)

	client.token.err = errors.New("broker gone")
	require.ErrorContains(t, m.RecordTrial(sample_trials[0]), "broker gone")
	client.token = fake_token{timeout: true}
	require.ErrorContains(t, m.RecordTrial(sample_trials[0]), "timed out")
}

// flaky refuses its first fails trials.
type flaky struct {
	Memory
	fails int
}

func (f *flaky) RecordTrial(t Trial) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("nope")
	}
	return f.Memory.RecordTrial(t)
}

func TestMulti(t *testing.T) {
	a, b := &Memory{}, &Memory{}
	record_all(t, NewMulti(a, b))
	require.Len(t, a.Trials(), 2)
	require.Len(t, b.Trials(), 2)

	a, c := &Memory{}, &Memory{}
	f := &flaky{fails: 1}
	m := NewMulti(a, f, c)
	require.Equal(t, 3, m.Len())
	require.EqualError(t, m.RecordTrial(sample_trials[0]), "nope")
	require.Len(t, a.Trials(), 1)
	require.Empty(t, f.Trials())
	require.Empty(t, c.Trials())

	// recording the same trial again only reaches the sinks that missed it
	require.NoError(t, m.RecordTrial(sample_trials[0]))
	for _, s := range []*Memory{a, &f.Memory, c} {
		if diff := cmp.Diff([]Trial{sample_trials[0]}, s.Trials()); diff != "" {
			t.Fatalf("unexpected trials (-want +got):\n%s", diff)
		}
	}

	// the next trial goes everywhere
	require.NoError(t, m.RecordTrial(sample_trials[1]))
	require.Len(t, a.Trials(), 2)
	require.Len(t, c.Trials(), 2)

	require.NoError(t, m.RecordSummary(sample_finals))
	require.NoError(t, m.RecordSummary(sample_finals))
	_, ok := c.Summary()
	require.True(t, ok)
}
