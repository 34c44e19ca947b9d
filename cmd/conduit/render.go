package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// Catppuccin Mocha
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)
	metaStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	authorStyle = lipgloss.NewStyle().Foreground(colorTeal)
	tagStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	heartStyle  = lipgloss.NewStyle().Foreground(colorPeach)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	bodyStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorOverlay1).Padding(0, 1)
)

const timeLayout = "Jan 2, 2006"

func renderOK(msg string) string {
	return okStyle.Render("✓ " + msg)
}

func renderErrors(errs model.Errors) string {
	if len(errs) == 0 {
		return ""
	}

	lines := strings.Split(errs.String(), "\n")
	for i, l := range lines {
		lines[i] = errorStyle.Render("✗ " + l)
	}

	return strings.Join(lines, "\n")
}

func renderUser(u model.User) string {
	lines := []string{
		titleStyle.Render(u.Username) + " " + metaStyle.Render("<"+u.Email+">"),
	}
	if u.Bio != "" {
		lines = append(lines, bodyStyle.Render(u.Bio))
	}
	if u.Image != "" {
		lines = append(lines, metaStyle.Render(u.Image))
	}

	return strings.Join(lines, "\n")
}

func renderProfile(p model.Profile) string {
	follow := "not following"
	if p.Following {
		follow = "following"
	}

	lines := []string{titleStyle.Render(p.Username) + " " + metaStyle.Render("("+follow+")")}
	if p.Bio != "" {
		lines = append(lines, bodyStyle.Render(p.Bio))
	}

	return strings.Join(lines, "\n")
}

func renderTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagStyle.Render("#"+t))
	}

	return strings.Join(out, " ")
}

func renderFavorites(a model.Article) string {
	heart := "♡"
	if a.Favorited {
		heart = "♥"
	}

	return heartStyle.Render(heart + " " + strconv.Itoa(a.FavoritesCount))
}

// renderPreview is one entry of an article list.
func renderPreview(a model.Article) string {
	head := titleStyle.Render(a.Title) + "  " + renderFavorites(a)
	meta := metaStyle.Render(a.Slug+" · by ") + authorStyle.Render(a.Author.Username) +
		metaStyle.Render(" · "+a.CreatedAt.Format(timeLayout))

	lines := []string{head, meta}
	if a.Description != "" {
		lines = append(lines, bodyStyle.Render(a.Description))
	}
	if tags := renderTags(a.TagList); tags != "" {
		lines = append(lines, tags)
	}

	return strings.Join(lines, "\n")
}

func renderArticles(articles []model.Article, total int) string {
	if len(articles) == 0 {
		return metaStyle.Render("No articles are here... yet.")
	}

	out := make([]string, 0, len(articles)+1)
	for _, a := range articles {
		out = append(out, renderPreview(a))
	}
	out = append(out, metaStyle.Render(fmt.Sprintf("%d of %d articles", len(articles), total)))

	return strings.Join(out, "\n\n")
}

func renderComment(c model.Comment) string {
	meta := metaStyle.Render("#"+strconv.Itoa(c.ID)+" ") + authorStyle.Render(c.Author.Username) +
		metaStyle.Render(" · "+c.CreatedAt.Format(timeLayout))

	return boxStyle.Render(c.Body + "\n" + meta)
}

func renderArticle(a model.Article, comments []model.Comment) string {
	follow := ""
	if a.Author.Following {
		follow = metaStyle.Render(" (following)")
	}

	lines := []string{
		titleStyle.Render(a.Title) + "  " + renderFavorites(a),
		metaStyle.Render("by ") + authorStyle.Render(a.Author.Username) + follow +
			metaStyle.Render(" · "+a.CreatedAt.Format(timeLayout)),
		"",
		a.Body,
	}
	if tags := renderTags(a.TagList); tags != "" {
		lines = append(lines, "", tags)
	}

	lines = append(lines, "")
	if len(comments) == 0 {
		lines = append(lines, metaStyle.Render("No comments yet."))
	}
	for _, c := range comments {
		lines = append(lines, renderComment(c))
	}

	return strings.Join(lines, "\n")
}

// splitTags parses a comma separated tag list, dropping blanks.
func splitTags(s []string) []string {
	var tags []string
	for _, part := range s {
		for _, t := range strings.Split(part, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	return tags
}
