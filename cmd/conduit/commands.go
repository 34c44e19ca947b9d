package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/machines/app"
	"github.com/SergeyParamoshkin/conduit/internal/machines/article"
	"github.com/SergeyParamoshkin/conduit/internal/machines/auth"
	"github.com/SergeyParamoshkin/conduit/internal/machines/editor"
	"github.com/SergeyParamoshkin/conduit/internal/machines/feed"
	"github.com/SergeyParamoshkin/conduit/internal/machines/profile"
	"github.com/SergeyParamoshkin/conduit/internal/machines/settings"
	"github.com/SergeyParamoshkin/conduit/internal/machines/tags"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/session"
)

// errFailed is returned once the failure has been printed.
var errFailed = errors.New("request failed")

// withHost runs fn with a host whose session is resolved.
func withHost(fn func(ctx context.Context, cmd *cli.Command, h *host) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		h, err := openHost(ctx, cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, cancel := h.waitCtx(ctx)
		defer cancel()

		return fn(ctx, cmd, h)
	}
}

func arg(cmd *cli.Command, n int, name string) (string, error) {
	v := strings.TrimSpace(cmd.Args().Get(n))
	if v == "" {
		return "", errors.Errorf("missing %s argument", name)
	}

	return v, nil
}

func submitAuth(ctx context.Context, h *host, form auth.Form) error {
	h.app.Auth.Send(auth.Submit{Form: form})

	snap, err := h.app.Auth.WaitFor(ctx, func(s actor.Snapshot[auth.State, auth.Context]) bool {
		return s.State == auth.Authenticated || s.State == auth.Failed
	})
	if err != nil {
		return errors.Wrap(err, "waiting for auth")
	}
	if snap.State == auth.Failed {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}

	signed, err := h.app.WaitFor(ctx, func(s actor.Snapshot[app.State, app.Context]) bool {
		return s.State == app.Authenticated
	})
	if err != nil {
		return errors.Wrap(err, "waiting for session")
	}
	h.print(renderOK("signed in as " + signed.Context.Session.User.Username))

	return nil
}

func loginAction(ctx context.Context, cmd *cli.Command, h *host) error {
	return submitAuth(ctx, h, auth.Form{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
}

func registerAction(ctx context.Context, cmd *cli.Command, h *host) error {
	name := cmd.String("username")
	if name == "" {
		return errors.New("a username is required to sign up")
	}

	return submitAuth(ctx, h, auth.Form{
		Name:     name,
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
}

func logoutAction(ctx context.Context, _ *cli.Command, h *host) error {
	if !h.app.IsAuthenticated() {
		// a rejected token is still stored
		if err := h.tokens.Clear(); err != nil {
			return err
		}
		h.print(renderOK("signed out"))

		return nil
	}

	h.app.Send(session.LogOut{})
	if _, err := h.app.WaitFor(ctx, func(s actor.Snapshot[app.State, app.Context]) bool {
		return s.State == app.Unauthenticated
	}); err != nil {
		return errors.Wrap(err, "waiting for sign out")
	}
	h.print(renderOK("signed out"))

	return nil
}

func whoamiAction(_ context.Context, _ *cli.Command, h *host) error {
	u, ok := h.app.User()
	if !ok {
		return h.requireUser("see your account")
	}
	h.print(renderUser(u))

	return nil
}

func feedParams(cmd *cli.Command) model.FeedParams {
	p := model.DefaultFeedParams()
	if l := cmd.Int("limit"); l > 0 {
		p.Limit = int(l)
	}
	p.Offset = int(cmd.Int("offset"))
	p.Tag = cmd.String("tag")
	p.Author = cmd.String("author")
	p.Favorited = cmd.String("favorited")
	if cmd.Bool("personal") {
		p.Feed = model.PersonalFeed
	}

	return p
}

func feedAction(ctx context.Context, cmd *cli.Command, h *host) error {
	params := feedParams(cmd)
	if params.Feed == model.PersonalFeed {
		if err := h.requireUser("read your feed"); err != nil {
			return err
		}
	}

	f := feed.Start(ctx, h.deps, params, h.app.IsAuthenticated)
	defer f.Stop()

	snap, err := await(ctx, f, func(s actor.Snapshot[feed.State, feed.Context]) bool {
		return s.State != feed.Loading
	})
	if err != nil {
		return err
	}
	if snap.State == feed.FailedLoadingFeed {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderArticles(snap.Context.Articles, snap.Context.ArticlesCount))

	return nil
}

func tagsAction(ctx context.Context, _ *cli.Command, h *host) error {
	t := tags.Start(ctx, h.deps)
	defer t.Stop()

	snap, err := await(ctx, t, func(s actor.Snapshot[tags.State, tags.Context]) bool {
		return s.State != tags.Loading
	})
	if err != nil {
		return err
	}
	if snap.State == tags.Errored {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderTags(snap.Context.Tags))

	return nil
}

// openArticle starts an article page and waits for both regions to load.
func openArticle(ctx context.Context, h *host, slug string) (*article.Actor, actor.Snapshot[article.State, article.Context], error) {
	a := article.Start(ctx, h.deps, slug, h.app.IsAuthenticated)

	snap, err := await(ctx, a, func(s actor.Snapshot[article.State, article.Context]) bool {
		return s.State.Article != article.ArticleFetching && s.State.Comments != article.CommentsFetching
	})
	if err != nil {
		a.Stop()

		return nil, snap, err
	}
	if snap.State.Article == article.ArticleErrored {
		a.Stop()
		h.print(renderErrors(snap.Context.Errors))

		return nil, snap, errFailed
	}

	return a, snap, nil
}

func articleAction(ctx context.Context, cmd *cli.Command, h *host) error {
	slug, err := arg(cmd, 0, "slug")
	if err != nil {
		return err
	}

	a, snap, err := openArticle(ctx, h, slug)
	if err != nil {
		return err
	}
	defer a.Stop()

	h.print(renderArticle(snap.Context.Article, snap.Context.Comments))

	return nil
}

func favoriteAction(ctx context.Context, cmd *cli.Command, h *host) error {
	slug, err := arg(cmd, 0, "slug")
	if err != nil {
		return err
	}
	if err := h.requireUser("favorite articles"); err != nil {
		return err
	}

	a, snap, err := openArticle(ctx, h, slug)
	if err != nil {
		return err
	}
	defer a.Stop()

	before := snap.Context.Article.Favorited
	a.Send(article.ToggleFavorite{})

	snap, err = await(ctx, a, func(s actor.Snapshot[article.State, article.Context]) bool {
		return s.Context.Article.Favorited != before
	})
	if err != nil {
		return err
	}
	if len(snap.Context.Errors) > 0 {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderPreview(snap.Context.Article))

	return nil
}

func followAction(ctx context.Context, cmd *cli.Command, h *host) error {
	username, err := arg(cmd, 0, "username")
	if err != nil {
		return err
	}
	if err := h.requireUser("follow authors"); err != nil {
		return err
	}

	p := profile.Start(ctx, h.deps, username, h.app.IsAuthenticated)
	defer p.Stop()

	snap, err := await(ctx, p, func(s actor.Snapshot[profile.State, profile.Context]) bool {
		return s.State != profile.Loading
	})
	if err != nil {
		return err
	}
	if snap.State == profile.Errored {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}

	before := snap.Context.Profile.Following
	p.Send(profile.ToggleFollowing{})

	snap, err = await(ctx, p, func(s actor.Snapshot[profile.State, profile.Context]) bool {
		return s.Context.Profile.Following != before
	})
	if err != nil {
		return err
	}
	if len(snap.Context.Errors) > 0 {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderProfile(snap.Context.Profile))

	return nil
}

func commentAddAction(ctx context.Context, cmd *cli.Command, h *host) error {
	slug, err := arg(cmd, 0, "slug")
	if err != nil {
		return err
	}
	body := strings.TrimSpace(strings.Join(cmd.Args().Tail(), " "))
	if body == "" {
		return errors.New("missing comment body")
	}
	if err := h.requireUser("comment"); err != nil {
		return err
	}

	a, snap, err := openArticle(ctx, h, slug)
	if err != nil {
		return err
	}
	defer a.Stop()

	count := len(snap.Context.Comments)
	a.Send(article.CreateComment{Body: body})

	snap, err = await(ctx, a, func(s actor.Snapshot[article.State, article.Context]) bool {
		return len(s.Context.Comments) != count || len(s.Context.Errors) > 0
	})
	if err != nil {
		return err
	}
	if len(snap.Context.Comments) == count {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderComment(snap.Context.Comments[0]))

	return nil
}

func commentDeleteAction(ctx context.Context, cmd *cli.Command, h *host) error {
	slug, err := arg(cmd, 0, "slug")
	if err != nil {
		return err
	}
	raw, err := arg(cmd, 1, "comment id")
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return errors.Wrap(err, "comment id")
	}
	if err := h.requireUser("delete comments"); err != nil {
		return err
	}

	a, snap, err := openArticle(ctx, h, slug)
	if err != nil {
		return err
	}
	defer a.Stop()

	found := false
	for _, c := range snap.Context.Comments {
		found = found || c.ID == id
	}
	if !found {
		return errors.Errorf("no comment %d on %s", id, slug)
	}

	count := len(snap.Context.Comments)
	a.Send(article.DeleteComment{ID: id})

	snap, err = await(ctx, a, func(s actor.Snapshot[article.State, article.Context]) bool {
		return len(s.Context.Comments) != count
	})
	if err != nil {
		return err
	}
	if len(snap.Context.Errors) > 0 {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderOK("comment " + raw + " deleted"))

	return nil
}

func publishAction(ctx context.Context, cmd *cli.Command, h *host) error {
	if err := h.requireUser("publish"); err != nil {
		return err
	}

	e := editor.Start(ctx, h.deps, cmd.String("slug"))
	defer e.Stop()

	// an update starts from the stored article
	snap, err := await(ctx, e, func(actor.Snapshot[editor.State, editor.Context]) bool { return true })
	if err != nil {
		return err
	}

	values := snap.Context.FormValues
	if cmd.IsSet("title") {
		values.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		values.Description = cmd.String("description")
	}
	if cmd.IsSet("body") {
		values.Body = cmd.String("body")
	}
	if cmd.IsSet("tag") {
		values.TagList = splitTags(cmd.StringSlice("tag"))
	}

	e.Send(editor.Submit{Values: values})
	snap, err = await(ctx, e, func(s actor.Snapshot[editor.State, editor.Context]) bool {
		return s.State == editor.Success || s.State == editor.Errored
	})
	if err != nil {
		return err
	}
	if snap.State == editor.Errored {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}
	h.print(renderOK("published " + h.history.Current()))
	h.print(renderPreview(snap.Context.Article))

	return nil
}

func settingsAction(ctx context.Context, cmd *cli.Command, h *host) error {
	u, ok := h.app.User()
	if !ok {
		return h.requireUser("change your settings")
	}

	values := model.UserUpdate{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
	}
	if cmd.IsSet("username") {
		values.Username = cmd.String("username")
	}
	if cmd.IsSet("email") {
		values.Email = cmd.String("email")
	}
	if cmd.IsSet("bio") {
		values.Bio = cmd.String("bio")
	}
	if cmd.IsSet("image") {
		values.Image = cmd.String("image")
	}
	values.Password = cmd.String("password")

	s, err := settings.Start(ctx, h.deps, h.app)
	if err != nil {
		return err
	}
	defer s.Stop()

	s.Send(settings.Submit{Values: values})
	snap, err := await(ctx, s, func(s actor.Snapshot[settings.State, settings.Context]) bool {
		return s.State == settings.Success || s.State == settings.Failed
	})
	if err != nil {
		return err
	}
	if snap.State == settings.Failed {
		h.print(renderErrors(snap.Context.Errors))

		return errFailed
	}

	// the update reaches the app actor through the parent relay
	if _, err := h.app.WaitFor(ctx, func(s actor.Snapshot[app.State, app.Context]) bool {
		return s.Context.Session.User != nil && *s.Context.Session.User == snap.Context.User
	}); err != nil {
		return errors.Wrap(err, "waiting for session")
	}
	h.print(renderOK("settings saved"))
	h.print(renderUser(snap.Context.User))

	return nil
}
