package scene

/**
 * @brief Projection and post-processing parameters of a camera. The pose
 * lives in the entity transform.
 */
type CameraDescriptor struct {
	/** @brief Renders into a high dynamic range target. */
	HDR bool
	/** @brief Vertical field of view in radians. */
	FovY float32
	Near float32
	Far  float32
	/** @brief Optional bloom settings, nil disables bloom. */
	Bloom *BloomSettings
	/** @brief Enables fast approximate anti-aliasing. */
	FXAA bool
}

type BloomSettings struct {
	Threshold float32
	Knee      float32
	Scale     float32
	Intensity float32
}
