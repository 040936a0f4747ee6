// Package dispatch routes parsed HTTP requests to store operations and
// formats the replies the image server sends back.
package dispatch

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/httpproto"
	"github.com/prasoul/imgfs/internal/store"
)

//go:embed index.html
var indexHTML []byte

// Dispatcher routes requests against a single open store.
type Dispatcher struct {
	Store *store.Store
}

// New returns a Dispatcher serving s.
func New(s *store.Store) *Dispatcher {
	return &Dispatcher{Store: s}
}

// Handle routes msg to the matching operation and returns the raw bytes
// of the HTTP reply to write back to the connection. It never returns an
// error: every failure is translated into an HTTP status and logged.
func (d *Dispatcher) Handle(msg *httpproto.Message) []byte {
	id := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"request_id": id,
		"method":     msg.Method,
		"uri":        msg.URI,
	})

	var reply []byte
	switch {
	case httpproto.MatchURI(msg, "/") && msg.URI == "/":
		reply = httpproto.Reply(httpproto.StatusOK, "text/html", indexHTML)
	case httpproto.MatchURI(msg, "/index.html"):
		reply = httpproto.Reply(httpproto.StatusOK, "text/html", indexHTML)
	case httpproto.MatchURI(msg, "/imgfs/list"):
		reply = d.handleList(log)
	case httpproto.MatchURI(msg, "/imgfs/read"):
		reply = d.handleRead(msg, log)
	case httpproto.MatchURI(msg, "/imgfs/insert"):
		reply = d.handleInsert(msg, log)
	case httpproto.MatchURI(msg, "/imgfs/delete"):
		reply = d.handleDelete(msg, log)
	default:
		log.Warn("dispatch: no route")
		reply = httpproto.Reply(httpproto.StatusServerError, "text/plain", []byte("unknown route\n"))
	}

	log.WithField("status", statusLine(reply)).Info("dispatch: request")
	return reply
}

// statusLine extracts the status text (e.g. "200 OK") from the first line
// of a formatted reply, for request logging.
func statusLine(reply []byte) string {
	line, _, found := bytes.Cut(reply, []byte("\r\n"))
	if !found {
		return "unknown"
	}
	_, status, found := bytes.Cut(line, []byte(" "))
	if !found {
		return "unknown"
	}
	return string(status)
}

func (d *Dispatcher) handleList(log *logrus.Entry) []byte {
	body, err := d.Store.List(store.ListJSON)
	if err != nil {
		log.WithError(err).Error("dispatch: list failed")
		return errorReply(err)
	}
	return httpproto.Reply(httpproto.StatusOK, "application/json", []byte(body))
}

func (d *Dispatcher) handleRead(msg *httpproto.Message, log *logrus.Entry) []byte {
	id, ok := httpproto.GetVar(msg.URI, "img_id")
	if !ok || id == "" {
		return httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("missing img_id\n"))
	}
	resName, _ := httpproto.GetVar(msg.URI, "res")
	if resName == "" {
		resName = "orig"
	}
	res, ok := store.ParseResolution(resName)
	if !ok {
		return errorReply(ferrors.New(ferrors.InvalidArgument, "unknown resolution "+strconv.Quote(resName)))
	}

	body, err := d.Store.Read(id, res)
	if err != nil {
		log.WithError(err).Warn("dispatch: read failed")
		return errorReply(err)
	}
	return httpproto.Reply(httpproto.StatusOK, "image/jpeg", body)
}

func (d *Dispatcher) handleInsert(msg *httpproto.Message, log *logrus.Entry) []byte {
	if !httpproto.MatchVerb(msg, "POST") {
		return httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("insert requires POST\n"))
	}
	name, ok := httpproto.GetVar(msg.URI, "name")
	if !ok || name == "" {
		return httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("missing name\n"))
	}
	if len(msg.Body) == 0 {
		return httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("empty body\n"))
	}

	if err := d.Store.Insert(msg.Body, name); err != nil {
		log.WithError(err).Warn("dispatch: insert failed")
		return errorReply(err)
	}
	return httpproto.Redirect("/index.html")
}

func (d *Dispatcher) handleDelete(msg *httpproto.Message, log *logrus.Entry) []byte {
	id, ok := httpproto.GetVar(msg.URI, "img_id")
	if !ok || id == "" {
		return httpproto.Reply(httpproto.StatusBadRequest, "text/plain", []byte("missing img_id\n"))
	}
	if err := d.Store.Delete(id); err != nil {
		log.WithError(err).Warn("dispatch: delete failed")
		return errorReply(err)
	}
	return httpproto.Redirect("/index.html")
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorReply(err error) []byte {
	body, _ := json.Marshal(errorBody{Error: err.Error(), Kind: string(ferrors.KindOf(err))})
	return httpproto.Reply(httpproto.StatusServerError, "application/json", body)
}

// BannerLine is used by cmd/imgfs_server to log store stats at startup.
func BannerLine(s *store.Store) string {
	tw, th := s.ThumbRes()
	sw, sh := s.SmallRes()
	return "imgfs store " + s.Name() +
		" (version=" + strconv.FormatUint(uint64(s.Version()), 10) +
		", count=" + strconv.FormatUint(uint64(s.Count()), 10) +
		"/" + strconv.FormatUint(uint64(s.MaxFiles()), 10) +
		", thumb=" + strconv.Itoa(int(tw)) + "x" + strconv.Itoa(int(th)) +
		", small=" + strconv.Itoa(int(sw)) + "x" + strconv.Itoa(int(sh)) + ")"
}
