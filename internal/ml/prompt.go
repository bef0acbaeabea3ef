package ml

// analysisPrompt is the fixed instruction sent with every image. It pins the
// model to exactly two response shapes so the normalizer has something stable
// to extract.
const analysisPrompt = `You are a nutrition analysis expert. Analyze the provided image.
1. Determine if the image contains food.
2. If it does, respond ONLY in JSON with:
   {
     "isFood": true,
     "foodName": "<name>",
     "estimatedCalories": "<calories per serving>",
     "healthScore": <0-100>
   }
3. If it is not food, respond ONLY in JSON:
   {
     "isFood": false
   }
Be accurate, concise, and consistent.`

// DefaultMimeType is assumed when the upload did not declare one.
const DefaultMimeType = "image/jpeg"
