package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/pool-watcher/internal/events"
)

// =============================================================================
// PARSE
// =============================================================================

func TestParse_FullRecord(t *testing.T) {
	line := `{"time":"2026-10-18T10:00:00+00:00","pool":"blue","release":"blue-1.0.0",` +
		`"status":200,"upstream_status":"200","upstream_addr":"172.18.0.3:3000",` +
		`"request_time":0.012,"upstream_response_time":"0.010"}`

	evt, ok := events.Parse(line)
	require.True(t, ok)

	require.NotNil(t, evt.Pool)
	assert.Equal(t, "blue", *evt.Pool)
	require.NotNil(t, evt.Release)
	assert.Equal(t, "blue-1.0.0", *evt.Release)
	require.NotNil(t, evt.Status)
	assert.Equal(t, 200, *evt.Status)
	require.NotNil(t, evt.UpstreamStatus)
	assert.Equal(t, "200", *evt.UpstreamStatus)
	assert.Equal(t, "172.18.0.3:3000", evt.Upstream())
	require.NotNil(t, evt.RequestTime)
	assert.InDelta(t, 0.012, *evt.RequestTime, 1e-9)
	require.NotNil(t, evt.UpstreamResponseTime)
	assert.Equal(t, "0.010", *evt.UpstreamResponseTime)
	require.NotNil(t, evt.Time)
}

func TestParse_EmptyAndBlankLines(t *testing.T) {
	for _, line := range []string{"", "   ", "\n", "\t \r\n"} {
		_, ok := events.Parse(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParse_RejectsNonObjects(t *testing.T) {
	for _, line := range []string{
		`not json`,
		`{"pool":"blue"`,
		`[1,2,3]`,
		`"blue"`,
		`42`,
		`null`,
		`{"pool":"blue"} trailing`,
	} {
		_, ok := events.Parse(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParse_MissingFieldsStayAbsent(t *testing.T) {
	evt, ok := events.Parse(`{}`)
	require.True(t, ok)

	assert.Nil(t, evt.Pool)
	assert.Nil(t, evt.Release)
	assert.Nil(t, evt.Status)
	assert.Nil(t, evt.UpstreamStatus)
	assert.Nil(t, evt.UpstreamAddr)
	assert.Nil(t, evt.RequestTime)
	assert.Nil(t, evt.UpstreamResponseTime)
	assert.Nil(t, evt.Time)
}

func TestParse_NullFieldsStayAbsent(t *testing.T) {
	evt, ok := events.Parse(`{"pool":null,"status":null,"upstream_status":null,"request_time":null}`)
	require.True(t, ok)

	assert.Nil(t, evt.Pool)
	assert.Nil(t, evt.Status)
	assert.Nil(t, evt.UpstreamStatus)
	assert.Nil(t, evt.RequestTime)
}

func TestParse_StatusCoercion(t *testing.T) {
	evt, ok := events.Parse(`{"status":"503"}`)
	require.True(t, ok)
	assert.Equal(t, 503, *evt.Status)

	evt, ok = events.Parse(`{"status":" 404 "}`)
	require.True(t, ok)
	assert.Equal(t, 404, *evt.Status)

	evt, ok = events.Parse(`{"status":502.9}`)
	require.True(t, ok)
	assert.Equal(t, 502, *evt.Status, "numbers truncate toward zero")
}

func TestParse_BadStatusDropsRecord(t *testing.T) {
	for _, line := range []string{
		`{"pool":"blue","status":"-"}`,
		`{"pool":"blue","status":""}`,
		`{"pool":"blue","status":"5xx"}`,
		`{"pool":"blue","status":{"code":500}}`,
		`{"pool":"blue","status":[500]}`,
	} {
		_, ok := events.Parse(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParse_BooleansCoerceToNumbers(t *testing.T) {
	evt, ok := events.Parse(`{"pool":"green","status":true,"request_time":false}`)
	require.True(t, ok)
	assert.Equal(t, 1, *evt.Status)
	assert.Equal(t, 0.0, *evt.RequestTime)
	assert.Equal(t, "green", evt.PoolName())
	assert.False(t, evt.Errored())

	evt, ok = events.Parse(`{"status":false}`)
	require.True(t, ok)
	assert.Equal(t, 0, *evt.Status)
}

func TestParse_BadRequestTimeDropsRecord(t *testing.T) {
	_, ok := events.Parse(`{"pool":"blue","status":200,"request_time":"-"}`)
	assert.False(t, ok)

	evt, ok := events.Parse(`{"request_time":"0.25"}`)
	require.True(t, ok)
	assert.InDelta(t, 0.25, *evt.RequestTime, 1e-9)
}

func TestParse_UpstreamStatusShapes(t *testing.T) {
	evt, ok := events.Parse(`{"upstream_status":502}`)
	require.True(t, ok)
	assert.Equal(t, "502", *evt.UpstreamStatus)

	evt, ok = events.Parse(`{"upstream_status":"502, 200"}`)
	require.True(t, ok)
	assert.Equal(t, "502, 200", *evt.UpstreamStatus)

	evt, ok = events.Parse(`{"upstream_status":[502,"200"]}`)
	require.True(t, ok)
	assert.Equal(t, "502,200", *evt.UpstreamStatus)

	evt, ok = events.Parse(`{"pool":"green","upstream_status":true}`)
	require.True(t, ok, "boolean upstream status keeps the record")
	assert.Equal(t, "true", *evt.UpstreamStatus)
	assert.Equal(t, "green", evt.PoolName())
	assert.False(t, evt.Errored())

	evt, ok = events.Parse(`{"upstream_status":[false,"502"]}`)
	require.True(t, ok)
	assert.Equal(t, "false,502", *evt.UpstreamStatus)
	assert.True(t, evt.Errored())

	_, ok = events.Parse(`{"upstream_status":{"first":502}}`)
	assert.False(t, ok)

	_, ok = events.Parse(`{"upstream_status":[502,[200]]}`)
	assert.False(t, ok)
}

func TestParse_StringFieldShapes(t *testing.T) {
	evt, ok := events.Parse(`{"pool":7,"release":true}`)
	require.True(t, ok)
	assert.Equal(t, "7", evt.PoolName())
	assert.Equal(t, "true", evt.ReleaseName())

	_, ok = events.Parse(`{"pool":{"name":"blue"}}`)
	assert.False(t, ok)

	_, ok = events.Parse(`{"upstream_addr":["10.0.0.1:80"]}`)
	assert.False(t, ok)
}

func TestParse_UpstreamResponseTimeIsNotValidated(t *testing.T) {
	evt, ok := events.Parse(`{"upstream_response_time":"0.010, 0.020"}`)
	require.True(t, ok)
	assert.Equal(t, "0.010, 0.020", *evt.UpstreamResponseTime)

	evt, ok = events.Parse(`{"upstream_response_time":0.5}`)
	require.True(t, ok)
	assert.Equal(t, "0.5", *evt.UpstreamResponseTime)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func mustParse(t *testing.T, line string) events.Event {
	t.Helper()
	evt, ok := events.Parse(line)
	require.True(t, ok, "line %q", line)
	return evt
}

func TestErrored_AnyUpstreamAttempt5xx(t *testing.T) {
	assert.True(t, mustParse(t, `{"status":200,"upstream_status":"200,502"}`).Errored())
	assert.True(t, mustParse(t, `{"upstream_status":"502,200"}`).Errored())
	assert.True(t, mustParse(t, `{"status":404,"upstream_status":"504"}`).Errored())
}

func TestErrored_StatusFallback(t *testing.T) {
	assert.True(t, mustParse(t, `{"status":503}`).Errored())
	assert.True(t, mustParse(t, `{"status":500,"upstream_status":"200"}`).Errored())
	assert.False(t, mustParse(t, `{"status":499}`).Errored())
	assert.False(t, mustParse(t, `{"status":600}`).Errored())
}

func TestErrored_ComponentsAreNotTrimmed(t *testing.T) {
	// " 502" does not start with "5"; only the status can mark it.
	assert.False(t, mustParse(t, `{"status":200,"upstream_status":"200, 502"}`).Errored())
	assert.True(t, mustParse(t, `{"status":502,"upstream_status":"200, 502"}`).Errored())
}

func TestErrored_NothingPresent(t *testing.T) {
	assert.False(t, mustParse(t, `{"pool":"blue"}`).Errored())
	assert.False(t, mustParse(t, `{"upstream_status":""}`).Errored())
}
