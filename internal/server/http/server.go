// Package httpserver exposes the contact API over HTTP/JSON.
package httpserver

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/contact-keeper/internal/convert"
	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/repository"
	"github.com/and161185/contact-keeper/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	contacts service.ContactService
	verifier TokenVerifier
	pinger   repository.Pinger
	log      *zap.Logger
}

// New constructs a Server with injected services.
func New(
	auth service.AuthService,
	contacts service.ContactService,
	verifier TokenVerifier,
	pinger repository.Pinger,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, contacts: contacts, verifier: verifier, pinger: pinger, log: log}
}

// Options configures App.
type Options struct {
	CORSOrigin string
}

// App builds the fiber application with all routes.
func (s *Server) App(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(s.log),
		DisableStartupMessage: true,
	})

	app.Use(RequestLogger(s.log))
	app.Use(Recover(s.log))
	app.Use(CORS(opts.CORSOrigin))

	app.Get("/healthz", s.health)

	app.Post("/register", s.register)
	app.Post("/login", s.login)

	gate := AccessGate(s.verifier)
	app.Post("/contacts", gate, s.createContact)
	app.Get("/contacts", gate, s.listContacts)
	app.Put("/contacts/:id", gate, s.updateContact)
	app.Delete("/contacts/:id", gate, s.deleteContact)

	return app
}

// --- Auth ---

func (s *Server) register(c *fiber.Ctx) error {
	var req convert.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	u, err := s.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrBadRequest) {
			return fiber.NewError(fiber.StatusBadRequest, "Please provide name, email, and password")
		}
		return err
	}
	return c.JSON(convert.RegisterResponse{
		Msg:  "Registration successful",
		User: convert.PublicUser{Name: u.Name, Email: u.Email},
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req convert.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	sess, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrBadRequest) {
			return fiber.NewError(fiber.StatusBadRequest, "Please provide email and password")
		}
		return err
	}
	return c.JSON(convert.LoginResponse{Token: sess.Token})
}

// --- Contacts ---

func (s *Server) createContact(c *fiber.Ctx) error {
	ctx, userID, err := s.caller(c)
	if err != nil {
		return err
	}
	var in convert.ContactInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	created, err := s.contacts.Create(ctx, userID, in.Fields())
	if err != nil {
		return err
	}
	return c.JSON(convert.ToContact(created))
}

func (s *Server) listContacts(c *fiber.Ctx) error {
	ctx, userID, err := s.caller(c)
	if err != nil {
		return err
	}
	list, err := s.contacts.List(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(convert.ToContacts(list))
}

func (s *Server) updateContact(c *fiber.Ctx) error {
	ctx, userID, err := s.caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.FromString(c.Params("id"))
	if err != nil {
		return errs.ErrNotFound
	}
	var in convert.ContactInput
	if err := decodeJSON(c, &in); err != nil {
		return err
	}
	updated, err := s.contacts.Update(ctx, userID, id, in.Patch())
	if err != nil {
		return err
	}
	return c.JSON(convert.ToContact(updated))
}

func (s *Server) deleteContact(c *fiber.Ctx) error {
	ctx, userID, err := s.caller(c)
	if err != nil {
		return err
	}
	// An unparsable id cannot name any record, so there is nothing to delete.
	if id, perr := uuid.FromString(c.Params("id")); perr == nil {
		if err := s.contacts.Delete(ctx, userID, id); err != nil {
			return err
		}
	}
	return c.JSON(convert.Message{Msg: "Deleted"})
}

// --- Health ---

func (s *Server) health(c *fiber.Ctx) error {
	if s.pinger != nil {
		if err := s.pinger.Ping(c.UserContext()); err != nil {
			s.log.Warn("health: store unavailable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// caller returns the request context and the user id attached by AccessGate.
func (s *Server) caller(c *fiber.Ctx) (context.Context, uuid.UUID, error) {
	ctx := c.UserContext()
	id, ok := UserIDFromCtx(ctx)
	if !ok || id == uuid.Nil {
		return nil, uuid.Nil, errs.ErrUnauthorized
	}
	return ctx, id, nil
}

// decodeJSON binds a JSON body into v. An empty body leaves v untouched; a
// non-empty one needs a JSON Content-Type.
func decodeJSON(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	return nil
}
