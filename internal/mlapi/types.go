package mlapi

// envelope формат ответа внешнего ML-сервиса:
// {"success": true, "data": {...}} либо {"success": false, "error": {"message": "..."}}.
type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// RecommendRequest почвенно-климатические признаки для рекомендации культуры.
type RecommendRequest struct {
	Nitrogen    float64 `json:"N" validate:"required"`
	Phosphorus  float64 `json:"P" validate:"required"`
	Potassium   float64 `json:"K" validate:"required"`
	Temperature float64 `json:"temperature" validate:"required"`
	Humidity    float64 `json:"humidity" validate:"required"`
	PH          float64 `json:"ph" validate:"required"`
	Rainfall    float64 `json:"rainfall" validate:"required"`
}

// Recommendation результат рекомендации культуры.
type Recommendation struct {
	RecommendedCrop string  `json:"recommended_crop"`
	Confidence      float64 `json:"confidence"`
}

// YieldRequest признаки для прогноза урожайности. Имена полей повторяют
// контракт внешнего сервиса.
type YieldRequest struct {
	Crop                 string  `json:"Crop" validate:"required"`
	Season               string  `json:"Season" validate:"required"`
	State                string  `json:"State"`
	Area                 float64 `json:"Area" validate:"required"`
	AnnualRainfall       float64 `json:"Annual_Rainfall" validate:"required"`
	FertilizerPerHectare float64 `json:"Fertilizer_Per_Hectare" validate:"required"`
	PesticidePerHectare  float64 `json:"Pesticide_Per_Hectare" validate:"required"`
}

// YieldPrediction результат прогноза урожайности.
type YieldPrediction struct {
	Yield        float64 `json:"yield"`
	Unit         string  `json:"unit"`
	InputSummary struct {
		Crop   string  `json:"crop"`
		Season string  `json:"season"`
		Area   float64 `json:"area"`
	} `json:"input_summary"`
}

// PestReport результат распознавания вредителя по изображению.
type PestReport struct {
	PredictedPest string  `json:"predicted_pest"`
	Confidence    float64 `json:"confidence"`
	Description   string  `json:"description"`
	Treatment     string  `json:"treatment"`
	Prevention    string  `json:"prevention"`
}
