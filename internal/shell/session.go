package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"bookrec/internal/catalog"
	"bookrec/internal/parser"
	"bookrec/internal/render"
	"bookrec/internal/view"
)

// CatalogListLimit caps :catalog output and tab completion.
const CatalogListLimit = 25

const helpText = `Type a book title to get similar books.

  <title>                 recommendations for a title (tab completes)
  title:<title>           same, explicitly
  author:<name>           books by an author
  category:<name>         books in a category
  search:<text>           let the service match titles, authors and categories
  :catalog [prefix]       list known titles
  :export <file.html>     write the current results as an HTML page
  help                    this text
  exit                    leave
`

// Session runs parsed commands against a view and prints the outcome.
type Session struct {
	view  *view.View
	out   io.Writer
	index *catalog.Index

	heading string

	// outcome of the last Execute
	failure string
	failed  bool
}

func New(v *view.View, out io.Writer) *Session {
	return &Session{view: v, out: out, index: catalog.NewIndex(nil)}
}

// Start loads the catalog and builds the completion index. A failed catalog
// load is reported but leaves the session usable.
func (s *Session) Start(ctx context.Context) {
	s.view.Initialize(ctx)
	st := s.view.Snapshot()
	s.index = catalog.NewIndex(st.Catalog)
	if msg, ok := st.Status.Err(); ok {
		fmt.Fprintf(s.out, "Warning: %s\n", msg)
	}
	logrus.WithField("titles", s.index.Len()).Debug("shell.catalog.loaded")
}

// Execute handles one line and reports whether the session should end.
func (s *Session) Execute(ctx context.Context, line string) (exit bool) {
	s.failure, s.failed = "", false

	cmd, err := parser.Parse(line)
	if err != nil {
		s.fail(err.Error())
		return false
	}

	switch cmd.Kind {
	case parser.KindEmpty:
	case parser.KindExit:
		return true
	case parser.KindHelp:
		fmt.Fprint(s.out, helpText)
	case parser.KindCatalog:
		s.listCatalog(cmd.Arg)
	case parser.KindExport:
		s.export(cmd.Arg)
	case parser.KindTitle:
		title := cmd.Arg
		if canonical, ok := s.index.Lookup(title); ok {
			title = canonical
		}
		s.view.SetSelectedTitle(title)
		s.heading = "Books similar to " + title
		s.view.FetchRecommendations(ctx)
		s.show()
	case parser.KindAuthor:
		s.heading = "Books by " + cmd.Arg
		s.view.FetchByAuthor(ctx, cmd.Arg)
		s.show()
	case parser.KindCategory:
		s.heading = "Books in " + cmd.Arg
		s.view.FetchByCategory(ctx, cmd.Arg)
		s.show()
	case parser.KindSearch:
		s.heading = "Results for " + cmd.Arg
		s.view.Search(ctx, cmd.Arg)
		s.show()
	}
	return false
}

func (s *Session) show() {
	st := s.view.Snapshot()
	if msg, ok := st.Status.Err(); ok {
		s.failure, s.failed = msg, true
	}
	if err := render.Text(s.out, st); err != nil {
		logrus.WithError(err).Warn("shell.render.failed")
		return
	}
	if st.Status.Phase == view.PhaseIdle && len(st.Results) == 0 {
		fmt.Fprintln(s.out, render.EmptyText)
	}
}

func (s *Session) listCatalog(prefix string) {
	if s.index.Len() == 0 {
		fmt.Fprintln(s.out, "The catalog is empty.")
		return
	}
	titles := s.index.Suggest(prefix, CatalogListLimit)
	total := s.index.Len()
	if prefix != "" {
		total = len(s.index.Suggest(prefix, 0))
	}
	if err := render.Catalog(s.out, titles, total); err != nil {
		logrus.WithError(err).Warn("shell.render.failed")
	}
}

func (s *Session) export(path string) {
	st := s.view.Snapshot()
	if len(st.Results) == 0 {
		fmt.Fprintln(s.out, "Nothing to export.")
		return
	}

	f, err := os.Create(path)
	if err != nil {
		s.fail(err.Error())
		return
	}
	defer f.Close()

	if err := render.HTML(f, s.heading, st.Results); err != nil {
		s.fail(err.Error())
		return
	}
	fmt.Fprintf(s.out, "Wrote %d books to %s\n", len(st.Results), path)
}

// Complete offers whole-line candidates for tab completion: command names
// after a leading colon, catalog titles otherwise.
func (s *Session) Complete(line string) []string {
	if strings.HasPrefix(line, ":") {
		var out []string
		for _, name := range []string{":catalog", ":export", ":help", ":exit"} {
			if strings.HasPrefix(name, line) {
				out = append(out, name+" ")
			}
		}
		sort.Strings(out)
		return out
	}

	prefix, query := "", line
	if strings.HasPrefix(strings.ToLower(line), "title:") {
		prefix, query = line[:len("title:")], line[len("title:"):]
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	titles := s.index.Suggest(query, CatalogListLimit)
	out := make([]string, len(titles))
	for i, t := range titles {
		out[i] = prefix + t
	}
	return out
}

func (s *Session) fail(msg string) {
	s.failure, s.failed = msg, true
	fmt.Fprintf(s.out, "Error: %s\n", msg)
}

// Failed reports whether the last executed command failed, and why. Failures
// from before that command, such as a catalog that did not load, do not count.
func (s *Session) Failed() (string, bool) {
	return s.failure, s.failed
}
