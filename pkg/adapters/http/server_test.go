package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/internal/runtime"
	httpadapter "github.com/claritydental/walkout/pkg/adapters/http"
	"github.com/claritydental/walkout/pkg/adapters/memory"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/fields"
	"github.com/claritydental/walkout/pkg/observability"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	appts := memory.NewAppointments(&domain.Appointment{
		ID:            "appt-1",
		PatientID:     "pat-1",
		PatientName:   "Ada Perez",
		Office:        "Maple Grove",
		DateOfService: time.Now(),
	})
	engine := runtime.NewEngine(store, appts, fields.Default())

	handler := httpadapter.NewHandler(httpadapter.Config{
		Engine:   engine,
		Fields:   memory.NewFieldDefinitions(),
		Rules:    &memory.RuleEngine{Messages: []domain.RuleMessage{{Message: "crown fee differs from schedule"}}},
		Analyzer: memory.NoteAnalyzer{},
		Metrics:  observability.New(),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func officeBody() map[string]any {
	return map[string]any{
		"fields": map[string]any{
			"patientPresent":        "Yes",
			"zeroProduction":        "No",
			"primaryPaymentMode":    1,
			"primaryAmount":         120,
			"expectedAmount":        120,
			"totalProductionOffice": 500,
			"estInsuranceOffice":    400,
			"ppCollectedOffice":     100,
			"ruleEngineUniqueID":    "wo-1",
			"checkedByAi":           "Yes",
		},
		"submittedBy":          "front-desk",
		"lastFetchedLookupKey": "wo-1",
	}
}

func lc3HoldBody() map[string]any {
	return map[string]any{
		"fields": map[string]any{
			"totalProductionLC3":          500,
			"estInsuranceLC3":             400,
			"containsCrownDentureImplant": "No",
			"walkoutOnHold":               "Yes",
			"onHoldReasons":               []int{11},
			"onHoldNotes":                 "x-ray missing",
		},
	}
}

func TestServer_SubmitCreatesWalkout(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/walkouts/appt-1/office", officeBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res struct {
		Walkout *domain.Walkout `json:"walkout"`
		Created bool            `json:"created"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Created)
	assert.Equal(t, domain.StatusNotStarted, res.Walkout.Status)

	get, err := http.Get(srv.URL + "/walkouts/appt-1")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
}

func TestServer_ValidationFailureReturns422(t *testing.T) {
	srv := newServer(t)

	body := officeBody()
	delete(body["fields"].(map[string]any), "primaryAmount")
	resp := postJSON(t, srv.URL+"/walkouts/appt-1/office", body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var failure struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, "required", failure.Fields["primaryAmount"])
}

func TestServer_UnknownAppointmentReturns404(t *testing.T) {
	srv := newServer(t)
	resp := postJSON(t, srv.URL+"/walkouts/appt-404/office", officeBody())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownSectionReturns400(t *testing.T) {
	srv := newServer(t)
	resp := postJSON(t, srv.URL+"/walkouts/appt-1/billing", officeBody())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ConfirmationRoundTrip(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/walkouts/appt-1/office", officeBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/walkouts/appt-1/lc3", lc3HoldBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// An office resubmission of the held record parks on the dialog.
	resp = postJSON(t, srv.URL+"/walkouts/appt-1/office", officeBody())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var pending struct {
		PendingID string `json:"pendingId"`
		Prompt    struct {
			Question string `json:"question"`
		} `json:"prompt"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	require.NotEmpty(t, pending.PendingID)
	assert.NotEmpty(t, pending.Prompt.Question)

	resp = postJSON(t, srv.URL+"/confirmations/"+pending.PendingID, map[string]any{"answer": "Yes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res struct {
		Walkout *domain.Walkout `json:"walkout"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, domain.StatusOnHoldLC3, res.Walkout.Status)
}

func TestServer_CancelConfirmation(t *testing.T) {
	srv := newServer(t)

	postJSON(t, srv.URL+"/walkouts/appt-1/office", officeBody())
	postJSON(t, srv.URL+"/walkouts/appt-1/lc3", lc3HoldBody())
	resp := postJSON(t, srv.URL+"/walkouts/appt-1/office", officeBody())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var pending struct {
		PendingID string `json:"pendingId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/confirmations/"+pending.PendingID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	resp = postJSON(t, srv.URL+"/confirmations/"+pending.PendingID, map[string]any{"answer": "Yes"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_FieldsEndpoint(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/fields?active=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sets []fields.OptionSet
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sets))
	assert.Len(t, sets, 4)
}

func TestServer_LookupAndAnalyze(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/lookup", map[string]any{
		"patientId": "pat-1", "uniqueId": "wo-1", "office": "Maple Grove",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lookup struct {
		UniqueID string               `json:"uniqueId"`
		Messages []domain.RuleMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lookup))
	assert.Equal(t, "wo-1", lookup.UniqueID)
	assert.Len(t, lookup.Messages, 1)

	resp = postJSON(t, srv.URL+"/analyze", map[string]any{
		"providerNotes":  "tooth 14 prepared for crown by Dr. Lee",
		"hygienistNotes": "routine cleaning",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var findings domain.NoteFindings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&findings))
	assert.True(t, findings.ProviderToothNumber)
	assert.False(t, findings.HygienistSurgical)
}

func TestServer_HealthAndSpec(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	spec, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer spec.Body.Close()
	assert.Equal(t, http.StatusOK, spec.StatusCode)
	assert.Equal(t, "text/yaml", spec.Header.Get("Content-Type"))
}
