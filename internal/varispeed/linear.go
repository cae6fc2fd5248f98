package varispeed

// LinearResampler 线性插值变速器
// 优点：简单、快速、无滤波延迟
// 缺点：升调时没有抗混叠，高频可能失真
type LinearResampler struct{}

// NewLinearResampler 创建线性插值变速器
func NewLinearResampler() *LinearResampler {
	return &LinearResampler{}
}

// Resample 使用线性插值变速
// 算法：
//
//	position = outputIndex * factor
//	i = floor(position)
//	frac = position - i
//	output[outputIndex] = input[i] * (1 - frac) + input[i+1] * frac
func (r *LinearResampler) Resample(input []float64, factor float64) ([]float64, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return []float64{}, nil
	}

	// 原速直接返回副本
	if factor == 1 {
		result := make([]float64, len(input))
		copy(result, input)
		return result, nil
	}

	outputLen := OutputLen(len(input), factor)
	output := make([]float64, outputLen)

	for out := 0; out < outputLen; out++ {
		position := float64(out) * factor
		in := int(position)
		frac := position - float64(in)

		// 边界：最后一个样本之后保持末值
		if in >= len(input)-1 {
			output[out] = input[len(input)-1]
			continue
		}

		output[out] = input[in]*(1.0-frac) + input[in+1]*frac
	}

	return output, nil
}
