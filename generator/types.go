package generator

// Request 描述一次生成请求：心情、年龄、城市。
type Request struct {
	Mood string `json:"mood" validate:"required,max=64"`
	Age  int    `json:"age" validate:"required,gte=1,lte=120"`
	City string `json:"city" validate:"required,max=100"`
}

// Draft is the recipe produced by the model after normalization.
type Draft struct {
	Name         string   `json:"name"`
	PrepTime     string   `json:"prepTime"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Mood         string   `json:"mood"`
}

// requiredFields lists the keys every model response must carry, in report order.
var requiredFields = []string{"name", "prepTime", "ingredients", "instructions", "mood"}
