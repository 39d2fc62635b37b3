package authapi

import (
	"encoding/json"
	"mime"

	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authsrv"
	"github.com/gofiber/fiber/v2"
)

// detectChannel maps the request media type to a login channel.
func detectChannel(contentType string) (authsrv.Channel, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return 0, auth.ErrRegistry.New(auth.CodeUnsupportedChannel).WithDetail("content_type", contentType)
	}

	switch mediaType {
	case fiber.MIMEApplicationJSON:
		return authsrv.ChannelStructured, nil
	case fiber.MIMEApplicationForm:
		return authsrv.ChannelForm, nil
	case fiber.MIMEMultipartForm:
		return authsrv.ChannelMultipart, nil
	default:
		return 0, auth.ErrRegistry.New(auth.CodeUnsupportedChannel).WithDetail("content_type", mediaType)
	}
}

// decodeLogin reads the body with the decoder that belongs to channel.
func decodeLogin(c *fiber.Ctx, channel authsrv.Channel) (authsrv.LoginRequest, error) {
	switch channel {
	case authsrv.ChannelStructured:
		var req authsrv.LoginRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return req, auth.ErrRegistry.NewWithCause(auth.CodeMalformedRequest, err)
		}
		return req, nil

	case authsrv.ChannelForm:
		args := c.Request().PostArgs()
		return requestFromValues(func(key string) (string, bool) {
			if !args.Has(key) {
				return "", false
			}
			return string(args.Peek(key)), true
		}), nil

	case authsrv.ChannelMultipart:
		form, err := c.MultipartForm()
		if err != nil {
			return authsrv.LoginRequest{}, auth.ErrRegistry.NewWithCause(auth.CodeMalformedRequest, err)
		}
		return requestFromValues(func(key string) (string, bool) {
			values := form.Value[key]
			if len(values) == 0 {
				return "", false
			}
			return values[0], true
		}), nil
	}

	return authsrv.LoginRequest{}, auth.ErrRegistry.New(auth.CodeUnsupportedChannel)
}

func requestFromValues(get func(key string) (string, bool)) authsrv.LoginRequest {
	optional := func(key string) *string {
		if v, ok := get(key); ok {
			return &v
		}
		return nil
	}

	email, _ := get("email")
	password, _ := get("password")

	return authsrv.LoginRequest{
		Email:             email,
		Password:          password,
		RedirectTo:        optional("redirect_to"),
		ResponseType:      optional("response_type"),
		PKCECodeChallenge: optional("pkce_code_challenge"),
	}
}

func queryParam(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
