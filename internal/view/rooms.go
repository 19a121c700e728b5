// Package view holds the server-rendered HTML of the room status page.
package view

import (
	"strings"

	"github.com/samber/lo"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/rooms"
)

// FragmentPath is polled by the status page to refresh the room table.
const FragmentPath = "/rooms/fragment"

const pollInterval = "every 5s"

// RoomsPage is the full status page. The table body is refreshed by htmx.
func RoomsPage(summaries []rooms.Summary) g.Node {
	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				g.El("title", g.Text("Rooms")),
				html.Script(html.Src("https://unpkg.com/htmx.org@2.0.4")),
			),
			html.Body(
				html.Class("container mx-auto p-8"),
				html.H1(html.Class("text-2xl font-bold mb-4"), g.Text("Active rooms")),
				html.Div(
					html.ID("rooms"),
					hx.Get(FragmentPath),
					hx.Trigger(pollInterval),
					hx.Swap("innerHTML"),
					RoomsFragment(summaries),
				),
			),
		),
	)
}

// RoomsFragment renders the room table, or a notice when nobody is connected.
func RoomsFragment(summaries []rooms.Summary) g.Node {
	if len(summaries) == 0 {
		return html.P(html.Class("text-gray-500"), g.Text("No active rooms."))
	}

	return html.Table(
		html.Class("table-auto w-full"),
		html.THead(
			html.Tr(
				html.Th(g.Text("Room")),
				html.Th(g.Text("Members")),
				html.Th(g.Text("Users")),
			),
		),
		html.TBody(
			g.Map(summaries, func(s rooms.Summary) g.Node {
				return html.Tr(
					html.Td(g.Text(s.Room)),
					html.Td(g.Textf("%d", len(s.Users))),
					html.Td(g.Text(joinUsernames(s.Users))),
				)
			}),
		),
	)
}

func joinUsernames(users []domain.User) string {
	return strings.Join(lo.Map(users, func(u domain.User, _ int) string {
		return u.Username
	}), ", ")
}
