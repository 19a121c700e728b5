package rendering

import (
	"bytes"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
)

// Renderer defines the contract for rendering gomponents nodes.
type Renderer interface {
	// RenderComponent renders a node to a slice of bytes. Useful for HTMX fragments.
	RenderComponent(node gomponents.Node) ([]byte, error)

	// RenderPage writes a node as a full HTTP response.
	RenderPage(c echo.Context, status int, node gomponents.Node) error
}

// NodeRenderer is the concrete Renderer. It also satisfies echo.Renderer so
// handlers can call c.Render(status, "", node).
type NodeRenderer struct{}

// NewNodeRenderer creates a new NodeRenderer instance.
func NewNodeRenderer() *NodeRenderer {
	return &NodeRenderer{}
}

// RenderComponent implements the Renderer interface.
func (r *NodeRenderer) RenderComponent(node gomponents.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render component to bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage implements the Renderer interface. The node is rendered to a
// buffer first so a failure still produces a clean error response.
func (r *NodeRenderer) RenderPage(c echo.Context, status int, node gomponents.Node) error {
	body, err := r.RenderComponent(node)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, body)
}

// Render implements the echo.Renderer interface. The node is passed as data;
// name is ignored.
func (r *NodeRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	node, ok := data.(gomponents.Node)
	if !ok {
		return fmt.Errorf("unsupported component type: %T. Component must be a gomponents.Node", data)
	}
	if c.Response().Header().Get(echo.HeaderContentType) == "" {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	}
	return node.Render(w)
}
