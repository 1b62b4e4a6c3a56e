package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/tabard/internal/mirror"
	"github.com/roach88/tabard/internal/record"
	"github.com/roach88/tabard/internal/sqlbuild"
)

// table resolves the :table path label to its canonical storage name.
// The canonical name drives both statement building and mirror action
// naming, so the webhook sees the same table the database does.
func (s *Server) table(c *fiber.Ctx) string {
	return s.res.Resolve(c.Params("table"))
}

// pathID parses the :id segment. The route constraint admits only
// digits, so the sole failure left is int64 overflow.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, &sqlbuild.ValidationError{Field: "id", Message: "id out of range"}
	}
	return id, nil
}

// respondErr maps pipeline failures onto the envelope: validation
// failures are the client's (400), everything else is the store's (500).
func respondErr(c *fiber.Ctx, err error) error {
	if sqlbuild.IsValidation(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fail(err.Error()))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fail(err.Error()))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(health{
		Status:   "ok",
		Service:  serviceName,
		Database: s.gw.Database(),
	})
}

// handleList returns every row of the table. No pagination, filtering,
// or ordering: the route contract is the whole table per call.
func (s *Server) handleList(c *fiber.Ctx) error {
	stmt, err := sqlbuild.List(s.gw.Database(), s.table(c))
	if err != nil {
		return respondErr(c, err)
	}
	recs, err := s.gw.Query(c.UserContext(), stmt)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(recs))
}

func (s *Server) handleGetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	stmt, err := sqlbuild.GetByID(s.gw.Database(), s.table(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	recs, err := s.gw.Query(c.UserContext(), stmt)
	if err != nil {
		return respondErr(c, err)
	}
	if len(recs) == 0 {
		// A lookup that finds nothing is absence, not a store failure.
		return c.Status(fiber.StatusNotFound).JSON(fail("record not found"))
	}
	return c.JSON(ok(recs[0]))
}

// handleInsert writes the body as a new row. A body without an id gets
// the next one from the gateway's allocator, and the response echoes
// the record with the id it was actually written under. The mirror
// event fires only after the write commits.
func (s *Server) handleInsert(c *fiber.Ctx) error {
	rec, err := record.UnmarshalRecord(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fail(err.Error()))
	}
	table := s.table(c)
	if err := s.gw.Insert(c.UserContext(), table, rec); err != nil {
		return respondErr(c, err)
	}
	s.mir.Mirror(mirror.VerbSave, table, rec)
	return c.JSON(ok(rec))
}

// handleUpdate rewrites the row addressed by the path id. The path id
// is authoritative: any id in the body is overwritten before the
// statement is built, so a body cannot redirect the update.
func (s *Server) handleUpdate(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	rec, err := record.UnmarshalRecord(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fail(err.Error()))
	}
	table := s.table(c)
	stmt, err := sqlbuild.Update(s.gw.Database(), table, id, rec)
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.gw.Execute(c.UserContext(), stmt); err != nil {
		return respondErr(c, err)
	}
	s.mir.Mirror(mirror.VerbUpdate, table, rec)
	return c.JSON(ok(rec))
}

// handleDelete removes the row if it exists. Deleting an absent row
// still succeeds, and the acknowledgement carries no data either way.
// The mirror payload is the id alone; the row's former contents are
// already gone.
func (s *Server) handleDelete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	table := s.table(c)
	stmt, err := sqlbuild.Delete(s.gw.Database(), table, id)
	if err != nil {
		return respondErr(c, err)
	}
	if err := s.gw.Execute(c.UserContext(), stmt); err != nil {
		return respondErr(c, err)
	}
	gone := record.New()
	gone.Set("id", record.Int(id))
	s.mir.Mirror(mirror.VerbDelete, table, gone)
	return c.JSON(envelope{Success: true})
}

// handleRawQuery executes caller SQL verbatim. The route is a
// deliberate trust boundary: it stays off unless configuration enables
// it, and nothing restricts the statement to reads.
func (s *Server) handleRawQuery(c *fiber.Ctx) error {
	if !s.rawEnabled {
		return c.Status(fiber.StatusForbidden).JSON(fail("raw query route is disabled"))
	}
	sql := c.Query("sql")
	if sql == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fail("missing sql parameter"))
	}
	recs, err := s.gw.Query(c.UserContext(), sqlbuild.RawQuery(sql))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(recs))
}
