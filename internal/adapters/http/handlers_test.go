package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobsitelog/core/internal/adapters/repository"
	"github.com/jobsitelog/core/internal/adapters/storage"
	"github.com/jobsitelog/core/internal/application/services"
	"github.com/jobsitelog/core/internal/domain/entities"
	"github.com/jobsitelog/core/internal/infrastructure/logger"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type testEnv struct {
	echo    *echo.Echo
	state   *repository.StateRepositoryImpl
	job     *JobHandler
	task    *TaskHandler
	summary *SummaryHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	log := logger.NewNop()
	state := repository.NewStateRepository(storage.NewMemoryStore(0), "jobsite-log-jobs", log)
	require.NoError(t, state.Load(context.Background()))

	return &testEnv{
		echo:    e,
		state:   state,
		job:     NewJobHandler(services.NewJobService(state, log), log),
		task:    NewTaskHandler(services.NewTaskService(state, log), log),
		summary: NewSummaryHandler(services.NewSummaryService(state), log),
	}
}

func (env *testEnv) request(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req, httptest.NewRecorder()
}

func (env *testEnv) createJob(t *testing.T, address string) *entities.Job {
	t.Helper()
	req, rec := env.request(http.MethodPost, "/api/v1/jobs", `{"address":"`+address+`"}`)
	c := env.echo.NewContext(req, rec)
	require.NoError(t, env.job.CreateJob(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var job entities.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	return &job
}

func TestCreateJobHandler(t *testing.T) {
	env := newTestEnv(t)

	job := env.createJob(t, "42 Wallaby Way")
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, "42 Wallaby Way", job.Address)
}

func TestCreateJobHandlerRejectsBlankAddress(t *testing.T) {
	env := newTestEnv(t)

	req, rec := env.request(http.MethodPost, "/api/v1/jobs", `{"address":"   "}`)
	c := env.echo.NewContext(req, rec)

	err := env.job.CreateJob(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Empty(t, env.state.Jobs(context.Background()))
}

func TestGetJobHandlerUnknownID(t *testing.T) {
	env := newTestEnv(t)

	req, rec := env.request(http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), "")
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := env.job.GetJob(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreateTaskHandler(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, "1 Main St")

	body := `{"title":"Paint Living Room","estimatedTime":"2 hours","materials":"Paint, Tape","tools":"Brush"}`
	req, rec := env.request(http.MethodPost, "/", body)
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	require.NoError(t, env.task.CreateTask(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var task entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, []string{"Paint", "Tape"}, task.Materials)
}

func TestDeleteTaskHandlerUnknownTaskIsNoop(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, "1 Main St")

	req, rec := env.request(http.MethodDelete, "/", "")
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id", "taskId")
	c.SetParamValues(job.ID.String(), uuid.NewString())

	require.NoError(t, env.task.DeleteTask(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDownloadEstimateHandler(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, "42 Wallaby Way")

	body := `{"title":"Paint"}`
	req, rec := env.request(http.MethodPost, "/", body)
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())
	require.NoError(t, env.task.CreateTask(c))

	req, rec = env.request(http.MethodGet, "/", "")
	c = env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	require.NoError(t, env.summary.DownloadEstimate(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "Estimate_42_Wallaby_Way.txt")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "JOBSITE ESTIMATE\n"))
}

func TestDownloadEstimateHandlerEmptyJob(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, "1 Main St")

	req, rec := env.request(http.MethodGet, "/", "")
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	err := env.summary.DownloadEstimate(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGetSummaryHandler(t *testing.T) {
	env := newTestEnv(t)
	job := env.createJob(t, "1 Main St")

	body := `{"title":"Paint","estimatedTime":"1h 30m","materials":"Paint","tools":"Brush"}`
	req, rec := env.request(http.MethodPost, "/", body)
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())
	require.NoError(t, env.task.CreateTask(c))

	req, rec = env.request(http.MethodGet, "/", "")
	c = env.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	require.NoError(t, env.summary.GetSummary(c))

	var sum map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "1h 30m", sum["totalTimeDisplay"])
	assert.Equal(t, float64(90), sum["totalMinutes"])
}
