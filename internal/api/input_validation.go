package api

import (
	"errors"
	"io"
	"net/mail"
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type credentialsInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	DisplayName     string `json:"display_name" form:"display_name"`
	RememberMe      bool   `json:"remember_me" form:"remember_me"`
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func parseCredentials(c *fiber.Ctx) (credentialsInput, error) {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return credentialsInput{}, err
	}

	credentials.Email = strings.ToLower(strings.TrimSpace(credentials.Email))
	credentials.Password = strings.TrimSpace(credentials.Password)
	credentials.ConfirmPassword = strings.TrimSpace(credentials.ConfirmPassword)
	credentials.DisplayName = strings.TrimSpace(credentials.DisplayName)

	if credentials.Email == "" || credentials.Password == "" {
		return credentialsInput{}, errors.New("missing credentials")
	}
	if _, err := mail.ParseAddress(credentials.Email); err != nil {
		return credentialsInput{}, errors.New("invalid email")
	}

	return credentials, nil
}

func validateRegistrationCredentials(credentials credentialsInput) string {
	if err := validatePasswordStrength(credentials.Password); err != nil {
		return err.Error()
	}
	if credentials.ConfirmPassword != "" && credentials.ConfirmPassword != credentials.Password {
		return "passwords do not match"
	}
	return ""
}

func validatePasswordStrength(password string) error {
	if !passwordLengthRegex.MatchString(password) {
		return errors.New("password too short")
	}

	if passwordUpperRegex.MatchString(password) &&
		passwordLowerRegex.MatchString(password) &&
		passwordDigitRegex.MatchString(password) {
		return nil
	}
	return errors.New("weak password")
}

// parseImageUpload pulls the "image" part from a multipart request and
// enforces the size and extension limits before anything touches the
// blob store or the classifier.
func parseImageUpload(c *fiber.Ctx) ([]byte, string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, "", errors.New("missing image upload")
	}
	if fileHeader.Size <= 0 {
		return nil, "", errors.New("empty image upload")
	}
	if fileHeader.Size > maxUploadBytes {
		return nil, "", errors.New("image too large")
	}

	fileName := strings.TrimSpace(fileHeader.Filename)
	extension := strings.ToLower(path.Ext(fileName))
	if !allowedImageExtensions[extension] {
		return nil, "", errors.New("unsupported image format")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", errors.New("unreadable image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", errors.New("unreadable image upload")
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image upload")
	}
	if len(data) > maxUploadBytes {
		return nil, "", errors.New("image too large")
	}

	return data, fileName, nil
}

func parseConditionID(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Params("id"))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid condition id")
	}
	return uint(parsed), nil
}
