package server

import (
	"io"
	"mime/multipart"
	"strings"

	"driftgram/internal/models"
	"driftgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MaxReferenceFiles is the number of reference uploads accepted per
// request. Only the first file conditions the generated image; the extra
// capacity mirrors the browser client's reference cache and is otherwise
// unused.
const MaxReferenceFiles = 8

// referenceField is the multipart field name for reference uploads.
const referenceField = "references"

// HealthCheck handles GET /api/health
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// GetPosts handles GET /api/posts. Posts are sorted newest-first at
// response time regardless of their order in storage.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts := s.posts.ListPosts()
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GeneratePost handles POST /api/generate-post. It accepts either a JSON
// body with an optional prompt or multipart form data with a prompt field
// and up to MaxReferenceFiles files under the references field.
func (s *Server) GeneratePost(c *fiber.Ctx) error {
	in, err := s.parseGenerateRequest(c)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok {
			return models.RespondWithError(c, mapServiceError(appErr), appErr)
		}
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post, err := s.posts.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (s *Server) parseGenerateRequest(c *fiber.Ctx) (service.CreatePostInput, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return s.parseMultipartRequest(c)
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	// An absent or empty body means an empty prompt; a present but
	// malformed JSON body is a client error.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return service.CreatePostInput{}, models.NewValidationError("Invalid request body")
		}
	}
	return service.CreatePostInput{Prompt: req.Prompt}, nil
}

func (s *Server) parseMultipartRequest(c *fiber.Ctx) (service.CreatePostInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return service.CreatePostInput{}, models.NewValidationError("Invalid multipart form")
	}

	in := service.CreatePostInput{}
	if values := form.Value["prompt"]; len(values) > 0 {
		in.Prompt = values[0]
	}

	files := form.File[referenceField]
	if len(files) > MaxReferenceFiles {
		files = files[:MaxReferenceFiles]
	}

	// The per-file size cap applies to every accepted upload even though
	// only the first one is read and used.
	for _, fh := range files {
		if fh.Size > s.config.MaxUploadSizeBytes() {
			return service.CreatePostInput{}, models.NewUploadTooLargeError(s.config.MaxUploadSizeMB)
		}
	}

	if len(files) > 0 {
		ref, err := readReference(files[0])
		if err != nil {
			return service.CreatePostInput{}, err
		}
		in.References = []service.ReferenceImage{ref}
	}

	return in, nil
}

func readReference(fh *multipart.FileHeader) (service.ReferenceImage, error) {
	src, err := fh.Open()
	if err != nil {
		return service.ReferenceImage{}, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.ReferenceImage{}, models.NewValidationError("Unable to read uploaded file")
	}

	return service.ReferenceImage{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
