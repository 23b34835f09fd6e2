package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outpost/systems"
)

// Base terrain colors, indexed by kind.
var kindColors = [systems.NumTerrainKinds]rl.Color{
	systems.TerrainGround:  {R: 34, G: 139, B: 34, A: 255},
	systems.TerrainRock:    {R: 105, G: 105, B: 105, A: 255},
	systems.TerrainCrystal: {R: 100, G: 50, B: 150, A: 255},
}

// capturedTint is blended over cells aliens hold.
var capturedTint = rl.Color{R: 200, G: 40, B: 40, A: 90}

// KindColor returns the fill color for a terrain kind.
func KindColor(k systems.TerrainKind) rl.Color {
	if k < systems.NumTerrainKinds {
		return kindColors[k]
	}
	return rl.Magenta
}

// TerrainRenderer draws the tile grid. Tiles are baked into a render
// texture once per grid and redrawn as a single quad.
type TerrainRenderer struct {
	grid    *systems.TerrainGrid
	texture rl.RenderTexture2D
	baked   bool
}

// NewTerrainRenderer creates a terrain renderer.
func NewTerrainRenderer() *TerrainRenderer {
	return &TerrainRenderer{}
}

// Draw renders the terrain, rebaking when the grid has been regenerated.
func (r *TerrainRenderer) Draw(grid *systems.TerrainGrid) {
	if grid == nil {
		return
	}
	if !r.baked || r.grid != grid {
		r.bake(grid)
	}

	// Render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texture.Texture.Width), Height: -float32(r.texture.Texture.Height)}
	rl.DrawTextureRec(r.texture.Texture, src, rl.Vector2{}, rl.White)
}

func (r *TerrainRenderer) bake(grid *systems.TerrainGrid) {
	w := int32(grid.Width())
	h := int32(grid.Height())
	if r.baked && (r.texture.Texture.Width != w || r.texture.Texture.Height != h) {
		rl.UnloadRenderTexture(r.texture)
		r.baked = false
	}
	if !r.baked {
		r.texture = rl.LoadRenderTexture(w, h)
	}

	rl.BeginTextureMode(r.texture)
	rl.ClearBackground(rl.Black)
	cellSize := grid.CellSize()
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			kind := grid.Kind(col, row)
			x := float32(col) * cellSize
			y := float32(row) * cellSize
			base := KindColor(kind)
			rl.DrawRectangle(int32(x), int32(y), int32(math.Ceil(float64(cellSize))), int32(math.Ceil(float64(cellSize))), base)
			if !grid.Rules().Passable(kind) {
				drawCellEdges(grid, col, row, x, y, cellSize, base)
			}
		}
	}
	rl.EndTextureMode()

	r.grid = grid
	r.baked = true
}

// drawCellEdges shades the borders of a solid tile facing open ground.
func drawCellEdges(grid *systems.TerrainGrid, col, row int, x, y, cellSize float32, base rl.Color) {
	open := func(c, r int) bool {
		return grid.InBounds(c, r) && grid.IsPassable(c, r)
	}
	edge := max(1, cellSize*0.15)

	// Light from above
	if open(col, row-1) {
		rl.DrawRectangle(int32(x), int32(y), int32(cellSize), int32(edge), lighten(base, 40, 200))
	}
	if open(col, row+1) {
		rl.DrawRectangle(int32(x), int32(y+cellSize-edge), int32(cellSize), int32(edge), darken(base, 0.6, 200))
	}
	if open(col-1, row) {
		rl.DrawRectangle(int32(x), int32(y), int32(edge), int32(cellSize), lighten(base, 20, 150))
	}
	if open(col+1, row) {
		rl.DrawRectangle(int32(x+cellSize-edge), int32(y), int32(edge), int32(cellSize), darken(base, 0.7, 150))
	}
}

func lighten(c rl.Color, amount float64, alpha uint8) rl.Color {
	return rl.Color{
		R: uint8(math.Min(float64(c.R)+amount, 255)),
		G: uint8(math.Min(float64(c.G)+amount, 255)),
		B: uint8(math.Min(float64(c.B)+amount, 255)),
		A: alpha,
	}
}

func darken(c rl.Color, factor float32, alpha uint8) rl.Color {
	return rl.Color{
		R: uint8(float32(c.R) * factor),
		G: uint8(float32(c.G) * factor),
		B: uint8(float32(c.B) * factor),
		A: alpha,
	}
}

// DrawTerritory tints every captured cell.
func DrawTerritory(grid *systems.TerrainGrid, territory *systems.TerritoryMap) {
	if grid == nil || territory == nil || territory.CapturedCount() == 0 {
		return
	}
	cellSize := grid.CellSize()
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			if territory.Captured(col, row) {
				rl.DrawRectangle(int32(float32(col)*cellSize), int32(float32(row)*cellSize),
					int32(cellSize), int32(cellSize), capturedTint)
			}
		}
	}
}

// Unload frees the baked texture.
func (r *TerrainRenderer) Unload() {
	if r.baked {
		rl.UnloadRenderTexture(r.texture)
		r.baked = false
	}
}
