package quizValidator

import (
	"coursesi/middleware"
	quizModels "coursesi/models/quiz"
	"coursesi/services/quiz"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CourseParam validates :course_id and stores it as "courseID"
func CourseParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// QuizKind validates :course_id and :kind ("pre" or "post")
func QuizKind() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		kind, ok := quizModels.ParseKind(strings.ToLower(strings.TrimSpace(c.Params("kind"))))
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz kind must be pre or post!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("quizKind", kind)
		return c.Next()
	}
}

// SubmitAnswers validates a submission body. Both answer shapes are accepted;
// only a missing answers field is refused.
func SubmitAnswers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Answers *quiz.SubmittedAnswers `json:"answers"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		// missing or null answers submit an empty sheet
		answers := quiz.SubmittedAnswers{}
		if reqData.Answers != nil {
			answers = *reqData.Answers
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedAnswers", answers)
		return c.Next()
	}
}

// UpsertDefinition validates an admin quiz definition body
func UpsertDefinition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(quiz.DefinitionInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.PreTest == nil && reqData.PostTest == nil && reqData.PassingScorePercent == nil && reqData.RequirePreTest == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"definition": "Nothing to update!"})
		}
		if err := reqData.Validate(); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"definition": err.Error()})
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedDefinition", reqData)
		return c.Next()
	}
}

// EvaluateCertificate validates :course_id and :user_id
func EvaluateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		userID, ok := parseID(c, "user_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("targetUserID", userID)
		return c.Next()
	}
}

// Reconcile validates the optional {"since": RFC3339} body
func Reconcile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var since time.Time

		if len(c.Body()) > 0 {
			reqData := new(struct {
				Since string `json:"since"`
			})
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
			if s := strings.TrimSpace(reqData.Since); s != "" {
				parsed, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return middleware.ValidationErrorResponse(c, map[string]string{"since": "Since must be an RFC3339 timestamp!"})
				}
				since = parsed
			}
		}

		c.Locals("reconcileSince", since)
		return c.Next()
	}
}
