package api

import "github.com/gofiber/fiber/v2"

// invalidInput - ошибка валидации DTO, ErrorHandler отвечает списком полей
type invalidInput struct {
	err error
}

func (e *invalidInput) Error() string { return e.err.Error() }
func (e *invalidInput) Unwrap() error { return e.err }

func parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "некорректные параметры запроса")
	}
	if err := validate.Struct(out); err != nil {
		return &invalidInput{err: err}
	}
	return nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "некорректное тело запроса")
	}
	if err := validate.Struct(out); err != nil {
		return &invalidInput{err: err}
	}
	return nil
}
