package keyboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/usercommand"
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleState  = tcell.StyleDefault
	stylePrompt = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

var helpLines = []string{
	"arrows: goal x/y   pgup/pgdn: goal z",
	"keypad 4/6: roll   8/2: pitch   1/9: yaw",
	"1: terrain   g: gait   +/-: duration",
	"o: optimize   p: publish trajectory   s: toggle solver   r: replay",
	"esc or ctrl-c: quit",
}

// aliasLine lists the typed characters that stand in for other keys, or "" without any.
func aliasLine(aliases map[input.Control]input.Control) string {
	var parts []string
	for from, to := range aliases {
		r, ok := input.RuneForControl(from)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%c=%s", r, strings.ToLower(strings.TrimPrefix(string(to), "Key"))))
	}
	if len(parts) == 0 {
		return ""
	}
	sort.Strings(parts)
	return "aliases: " + strings.Join(parts, " ")
}

// statusLines renders a command for the status view.
func statusLines(cmd *usercommand.UserCommand, published int) []string {
	if cmd == nil {
		return []string{"no command published yet"}
	}
	pos, ori := cmd.GoalPosition, cmd.GoalOrientation
	return []string{
		fmt.Sprintf("goal position     x=%.3f y=%.3f z=%.3f", pos.X, pos.Y, pos.Z),
		fmt.Sprintf("goal orientation  roll=%.3f pitch=%.3f yaw=%.3f", ori.Roll, ori.Pitch, ori.Yaw),
		fmt.Sprintf("terrain           %d (%s)", cmd.TerrainID, usercommand.TerrainID(cmd.TerrainID)),
		fmt.Sprintf("gait              %d", cmd.GaitID),
		fmt.Sprintf("total duration    %.2fs", cmd.TotalDuration),
		fmt.Sprintf("alternate solver  %t", cmd.UseAlternateSolver),
		fmt.Sprintf("commands sent     %d", published),
	}
}

func (c *Controller) draw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.screen.Clear()
	y := 0
	y = c.drawLine(y, styleTitle, "user command")
	y++
	for _, line := range helpLines {
		y = c.drawLine(y, styleHelp, line)
	}
	if line := aliasLine(c.Aliases()); line != "" {
		y = c.drawLine(y, styleHelp, line)
	}
	y++
	for _, line := range statusLines(c.last, c.published) {
		y = c.drawLine(y, styleState, line)
	}
	if c.prompt != nil && c.prompt.claimed {
		y++
		c.drawLine(y, stylePrompt, c.prompt.text)
	}
	c.screen.Show()
}

func (c *Controller) drawLine(y int, style tcell.Style, text string) int {
	width, height := c.screen.Size()
	if y >= height {
		return y + 1
	}
	x := 0
	for _, r := range text {
		if x >= width {
			break
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return y + 1
}
