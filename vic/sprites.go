package vic

const (
	spriteWidth  = 24
	spriteHeight = 21

	// The sprite coordinate system places (0,0) at this raster
	// position, ahead of the visible display window.
	spriteOriginX = 24
	spriteOriginY = 50
)

type spriteColorCode byte

const (
	spriteTransparent spriteColorCode = iota
	spriteOpaque
)

// compositeSprites paints every enabled sprite's contribution to line
// onto the frame buffer, back to front (sprite 7 first, sprite 0
// last, so sprite 0 ends up on top), and latches the sprite/background
// collision register when an opaque sprite pixel overlaps a
// non-background display pixel.
func (v *VIC) compositeSprites(line int) {
	enable := v.regs[regSpriteEn]
	if enable == 0 {
		return
	}

	for n := 7; n >= 0; n-- {
		if enable&(1<<uint(n)) == 0 {
			continue
		}
		v.compositeSprite(n, line)
	}
}

func (v *VIC) spritePos(n int) (x, y int) {
	xLo := v.regs[regSpriteXY+n*2]
	yByte := v.regs[regSpriteXY+n*2+1]
	msb := v.regs[regSpriteMSBX]&(1<<uint(n)) != 0

	xv := int(xLo)
	if msb {
		xv |= 0x100
	}
	return xv - spriteOriginX, int(yByte) - spriteOriginY
}

func (v *VIC) compositeSprite(n, line int) {
	_, spriteY := v.spritePos(n)

	yExpand := v.regs[regSpriteYExp]&(1<<uint(n)) != 0
	xExpand := v.regs[regSpriteXExp]&(1<<uint(n)) != 0
	multicolor := v.regs[regSpriteMC]&(1<<uint(n)) != 0

	effHeight := spriteHeight
	if yExpand {
		effHeight *= 2
	}

	dispRow := line - displayTop
	spriteRow := dispRow - spriteY
	if spriteRow < 0 || spriteRow >= effHeight {
		return
	}
	srcRow := spriteRow
	if yExpand {
		srcRow /= 2
	}

	spriteX, _ := v.spritePos(n)
	dataAddr := v.videoBankBase() + v.screenMemOffset() + 0x3f8 + uint16(n)
	ptr := v.bus.FetchVideoByte(dataAddr)
	rowBase := v.videoBankBase() + uint16(ptr)*64 + uint16(srcRow*3)

	b0 := v.bus.FetchVideoByte(rowBase)
	b1 := v.bus.FetchVideoByte(rowBase + 1)
	b2 := v.bus.FetchVideoByte(rowBase + 2)

	effWidth := spriteWidth
	if xExpand {
		effWidth *= 2
	}

	for sx := 0; sx < effWidth; sx++ {
		srcCol := sx
		if xExpand {
			srcCol /= 2
		}

		var opaque bool
		var rgb [3]byte

		if multicolor {
			pairIndex := srcCol / 2
			bitPos := 24 - 2 - pairIndex*2
			code := spritePairBits(b0, b1, b2, bitPos)
			switch code {
			case 0:
				opaque = false
			case 1:
				opaque = true
				rgb = Palette[v.regs[regSpriteMC0]&0x0f]
			case 2:
				opaque = true
				rgb = Palette[v.regs[regSpriteCol0+n]&0x0f]
			default:
				opaque = true
				rgb = Palette[v.regs[regSpriteMC1]&0x0f]
			}
		} else {
			bitPos := 23 - srcCol
			bit := spriteBit(b0, b1, b2, bitPos)
			if bit {
				opaque = true
				rgb = Palette[v.regs[regSpriteCol0+n]&0x0f]
			}
		}

		if !opaque {
			continue
		}

		dispCol := spriteX + sx
		px := dispCol + (displayLeft - borderLeft)
		py := (line - borderTop)
		if px < 0 || px >= FrameWidth {
			continue
		}

		if dispCol >= 0 && dispCol < (displayRight-displayLeft+1) {
			if !v.isBackgroundAt(dispRow, dispCol) {
				v.regs[regCollSB] |= 1 << uint(n)
			}
		}

		v.setPixel(px, py, rgb)
	}
}

// isBackgroundAt reports whether the already-rasterized display pixel
// at (dispRow, dispCol) is the background color, used to decide
// whether a sprite pixel drawn on top counts as a collision.
func (v *VIC) isBackgroundAt(dispRow, dispCol int) bool {
	rgb := v.displayPixel(dispRow, dispCol)
	return rgb == Palette[v.regs[regBGCOL0]&0x0f]
}

func spriteBit(b0, b1, b2 byte, bitPos int) bool {
	word := uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
	return word&(1<<uint(bitPos)) != 0
}

func spritePairBits(b0, b1, b2 byte, shift int) byte {
	word := uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
	return byte((word >> uint(shift)) & 0x03)
}
