package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-lending/auth"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) register(c *fiber.Ctx) error {
	var payload auth.RegisterUserMessage
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	user, err := s.cfg.Auth.Register(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *Server) login(c *fiber.Ctx) error {
	var payload auth.LoginMessage
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	pair, err := s.cfg.Auth.Login(c.UserContext(), payload)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(pair)
}

func (s *Server) refresh(c *fiber.Ctx) error {
	var payload RefreshPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	pair, err := s.cfg.Auth.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(pair)
}

func (s *Server) logout(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingUser
	}

	if err := s.cfg.Auth.Logout(c.UserContext(), user); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingUser
	}
	return c.JSON(user)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return ErrMalformedBody
	}
	return nil
}
