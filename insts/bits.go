package insts

// SignExtend extends the low width bits of v to a full 16-bit two's
// complement word. If bit width-1 is set, all bits above it become 1;
// otherwise they become 0.
func SignExtend(v Word, width uint) Word {
	mask := Word(1)<<width - 1
	v &= mask
	if v&(1<<(width-1)) != 0 {
		return v | ^mask
	}
	return v
}

// ZeroExtend masks all bits of v above the low width bits to 0.
func ZeroExtend(v Word, width uint) Word {
	return v & (Word(1)<<width - 1)
}
