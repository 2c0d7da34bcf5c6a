package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"blogeditor/internal/editor"
	"blogeditor/internal/listing"
	"blogeditor/internal/model"
	"blogeditor/internal/service"
)

// blogAPI is everything the terminal editor needs from the server.
type blogAPI interface {
	editor.Lifecycle
	List(ctx context.Context) ([]model.Document, error)
	Get(ctx context.Context, id string) (*model.Document, error)
	Promote(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) (string, error)
}

type repl struct {
	api  blogAPI
	sess *editor.Session
	out  io.Writer
}

const helpText = `commands:
  title <text>      set the title
  content <text>    replace the content
  append <text>     add a line to the content
  tags <a,b,c>      set the comma-separated tags
  focus | blur      start or stop the keep-alive autosave
  save              save the current fields as a draft
  publish           publish the current fields as a new blog
  status            show the fields being edited
  list [tag]        list drafts and published blogs, optionally filtered by tag
  show <id>         print one blog
  promote <id>      publish an existing draft
  delete <id>       delete a blog
  help | quit`

// exec runs one command line. It reports quit=true for quit/exit.
func (r *repl) exec(ctx context.Context, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(r.out, helpText)
	case "title":
		return false, r.sess.SetField(editor.FieldTitle, arg)
	case "content":
		return false, r.sess.SetField(editor.FieldContent, arg)
	case "append":
		content := r.sess.Fields().Content
		if content != "" {
			content += "\n"
		}
		return false, r.sess.SetField(editor.FieldContent, content+arg)
	case "tags":
		return false, r.sess.SetField(editor.FieldTags, arg)
	case "focus":
		r.sess.Focus()
	case "blur":
		r.sess.Blur()
	case "save":
		_, err = r.sess.SaveDraft(ctx)
	case "publish":
		_, err = r.sess.Publish(ctx)
	case "status":
		r.status()
	case "list":
		err = r.list(ctx, arg)
	case "show", "promote", "delete":
		if arg == "" {
			return false, fmt.Errorf("%s needs an id", cmd)
		}
		err = r.byID(ctx, cmd, arg)
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	// Session failures were already reported through its events.
	if errors.Is(err, editor.ErrEmptyDocument) {
		return false, nil
	}
	return false, err
}

func (r *repl) status() {
	f := r.sess.Fields()
	fmt.Fprintf(r.out, "title:   %s\n", f.Title)
	fmt.Fprintf(r.out, "tags:    %s\n", f.Tags)
	fmt.Fprintf(r.out, "content: %d chars\n", len(f.Content))
}

func (r *repl) list(ctx context.Context, tag string) error {
	docs, err := r.api.List(ctx)
	if err != nil {
		return err
	}
	drafts, published := listing.Split(docs)

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DRAFTS")
	for _, d := range drafts {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", d.ID, d.Title, d.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "PUBLISHED (%s)\n", strings.Join(listing.Tags(published), " | "))
	for _, d := range listing.FilterByTag(published, tag) {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", d.ID, d.Title, strings.Join(d.Tags.Labels(), ", "))
	}
	return w.Flush()
}

func (r *repl) byID(ctx context.Context, cmd, id string) error {
	var (
		msg string
		err error
	)
	switch cmd {
	case "show":
		var doc *model.Document
		if doc, err = r.api.Get(ctx, id); err == nil {
			fmt.Fprintf(r.out, "%s [%s]\ntags: %s\ncreated %s, updated %s\n\n%s\n",
				doc.Title, doc.Status, doc.Tags,
				doc.CreatedAt.Local().Format(time.DateTime), doc.UpdatedAt.Local().Format(time.DateTime),
				doc.Content)
		}
	case "promote":
		msg, err = r.api.Promote(ctx, id)
	case "delete":
		msg, err = r.api.Delete(ctx, id)
	}
	if errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("no blog with id %s", id)
	}
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(r.out, msg)
	}
	return nil
}
