package storefront

// Product grids use a fixed ladder of column layouts. The mobile count is
// clamped to at most 2 regardless of input; the desktop count selects one
// of four layouts, and intermediate breakpoints only collapse toward the
// 4-column case at the widest breakpoint.

// ClampMobileColumns normalizes a mobile column count: 2 stays 2, anything
// else becomes 1.
func ClampMobileColumns(n int) int {
	if n >= 2 {
		return 2
	}
	return 1
}

// ClampDesktopColumns normalizes a desktop column count into the 1..4
// ladder.
func ClampDesktopColumns(n int) int {
	switch {
	case n <= 1:
		return 1
	case n >= 4:
		return 4
	default:
		return n
	}
}

// GridClasses returns the full class list for a product grid with the
// given column counts. The caller replaces the grid node's class list
// wholesale with the result, so repeated recomputation stays idempotent.
func GridClasses(mobile, desktop int) []string {
	classes := []string{"grid"}
	if ClampMobileColumns(mobile) == 2 {
		classes = append(classes, "grid-cols-2")
	} else {
		classes = append(classes, "grid-cols-1")
	}

	switch ClampDesktopColumns(desktop) {
	case 1:
		classes = append(classes, "sm:grid-cols-1")
	case 2:
		classes = append(classes, "sm:grid-cols-2")
	case 3:
		classes = append(classes, "sm:grid-cols-2", "lg:grid-cols-3")
	default:
		classes = append(classes, "sm:grid-cols-2", "lg:grid-cols-3", "xl:grid-cols-4")
	}

	return append(classes, "gap-6")
}
