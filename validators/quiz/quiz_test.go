package quizValidator

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	quizModels "coursesi/models/quiz"
	"coursesi/services/quiz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

func TestQuizKind(t *testing.T) {
	app := fiber.New()
	app.Get("/course/:course_id/quiz/:kind", QuizKind(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"course": c.Locals("courseID"), "kind": c.Locals("quizKind").(quizModels.Kind)})
	})

	status, body := send(t, app, http.MethodGet, "/course/12/quiz/POST", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"course":12,"kind":"post"}`, body)

	status, _ = send(t, app, http.MethodGet, "/course/12/quiz/final", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	for _, bad := range []string{"0", "-3", "abc"} {
		status, _ = send(t, app, http.MethodGet, "/course/"+bad+"/quiz/pre", "")
		assert.Equal(t, fiber.StatusBadRequest, status, bad)
	}
}

func TestSubmitAnswers(t *testing.T) {
	var got quiz.SubmittedAnswers
	app := fiber.New()
	app.Post("/course/:course_id/quiz/post", SubmitAnswers(), func(c *fiber.Ctx) error {
		got = c.Locals("validatedAnswers").(quiz.SubmittedAnswers)
		return c.SendStatus(fiber.StatusNoContent)
	})

	status, _ := send(t, app, http.MethodPost, "/course/3/quiz/post", `{"answers":[{"questionId":"q1","answerIndex":2}]}`)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.True(t, got.Keyed())

	status, _ = send(t, app, http.MethodPost, "/course/3/quiz/post", `{"answers":[1,"x",null]}`)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.False(t, got.Keyed())
	assert.JSONEq(t, `[1,"x",null]`, string(got.Raw()))

	for _, empty := range []string{`{}`, `{"answers":null}`} {
		got = quiz.KeyedAnswers(quiz.QuestionAnswer{QuestionID: "stale"})
		status, _ = send(t, app, http.MethodPost, "/course/3/quiz/post", empty)
		assert.Equal(t, fiber.StatusNoContent, status, empty)
		assert.False(t, got.Keyed(), empty)
		assert.JSONEq(t, `[]`, string(got.Raw()), empty)
	}

	status, _ = send(t, app, http.MethodPost, "/course/3/quiz/post", `{"answers":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpsertDefinition(t *testing.T) {
	app := fiber.New()
	app.Put("/admin/course/:course_id/quiz", UpsertDefinition(), func(c *fiber.Ctx) error {
		in := c.Locals("validatedDefinition").(*quiz.DefinitionInput)
		return c.JSON(fiber.Map{"post": len(in.PostTest)})
	})

	valid := `{"post_test":[{"prompt":"2+2?","choices":["1","2","3","4"],"correct_index":3}]}`
	status, body := send(t, app, http.MethodPut, "/admin/course/3/quiz", valid)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"post":1}`, body)

	status, _ = send(t, app, http.MethodPut, "/admin/course/3/quiz", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	badIndex := `{"post_test":[{"prompt":"2+2?","choices":["1","2","3","4"],"correct_index":4}]}`
	status, _ = send(t, app, http.MethodPut, "/admin/course/3/quiz", badIndex)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestReconcile(t *testing.T) {
	var since time.Time
	app := fiber.New()
	app.Post("/reconcile", Reconcile(), func(c *fiber.Ctx) error {
		since = c.Locals("reconcileSince").(time.Time)
		return c.SendStatus(fiber.StatusNoContent)
	})

	status, _ := send(t, app, http.MethodPost, "/reconcile", "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.True(t, since.IsZero())

	status, _ = send(t, app, http.MethodPost, "/reconcile", `{"since":"2026-03-01T00:00:00Z"}`)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.True(t, since.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	status, _ = send(t, app, http.MethodPost, "/reconcile", `{"since":"yesterday"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
