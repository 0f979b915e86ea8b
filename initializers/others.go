package initializers

// The named schemes below are thin presets over VarianceScaling; each fixes the mode and
// factor that its literature name refers to.

type leCun struct {
	*varianceScaling
}

// LeCun returns variance scaling over the input fan with factor 1.
func LeCun() leCun {
	return leCun{VarianceScaling().In()}
}

type he struct {
	*varianceScaling
}

// He returns variance scaling over the input fan with factor 2, the usual pick ahead of a
// rectified-linear activation.
func He() he {
	return he{VarianceScaling().In().Factor(2)}
}

type xavier struct {
	*varianceScaling
}

// Xavier returns variance scaling over the fan average with factor 1.
func Xavier() xavier {
	return xavier{VarianceScaling().Avg()}
}

// Glorot is a proxy for Xavier
func Glorot() xavier {
	return Xavier()
}
