package groupkey

// Arithmetic in GF(2^8) with the AES reduction polynomial x^8+x^4+x^3+x+1
// (0x11b). Addition is XOR; multiplication and division go through
// log/exp tables built over the generator 3.

var (
	gfExp [510]byte
	gfLog [256]byte
)

func init() {
	x := byte(1)
	for i := 0; i < 255; i++ {
		gfExp[i] = x
		gfExp[i+255] = x
		gfLog[x] = byte(i)

		// multiply x by the generator 3
		x = mulNoTable(x, 3)
	}
}

func mulNoTable(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 != 0 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

// gfDiv computes a/b. Division by zero is a programming error and panics.
func gfDiv(a, b byte) byte {
	if b == 0 {
		panic("groupkey: division by zero in GF(256)")
	}
	if a == 0 {
		return 0
	}
	diff := int(gfLog[a]) - int(gfLog[b])
	if diff < 0 {
		diff += 255
	}
	return gfExp[diff]
}

// evalPoly evaluates the polynomial with the given coefficients at x using
// Horner's rule. coeffs[0] is the constant term.
func evalPoly(coeffs []byte, x byte) byte {
	var y byte
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = gfMul(y, x) ^ coeffs[i]
	}
	return y
}
