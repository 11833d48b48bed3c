package shell

// Returns the number of brackets left open at the end of code. Brackets in
// string literals and comments are not counted.
func openBrackets(code string) int {
	depth := 0
	rs := []rune(code)
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '"', '\'', '`':
			i = skipString(rs, i+1, r)
		case '/':
			if i+1 < len(rs) && rs[i+1] == '/' {
				for i < len(rs) && rs[i] != '\n' {
					i++
				}
			} else if i+1 < len(rs) && rs[i+1] == '*' {
				i += 2
				for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
					i++
				}
				i++
			}
		}
	}
	return depth
}

// Returns the index of the closing quote of a string starting at i, or the
// last index if the string is not closed. Only backquoted strings may span
// lines.
func skipString(rs []rune, i int, quote rune) int {
	for ; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			if quote != '`' {
				return i
			}
		}
	}
	return len(rs) - 1
}
