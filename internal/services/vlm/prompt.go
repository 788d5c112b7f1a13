package vlm

// ClipClassificationPrompt asks the model for a rally verdict on a single
// clip. The model must answer with JSON only; DecodeJSON tolerates fenced
// output anyway.
const ClipClassificationPrompt = `Analyze this video clip from a volleyball recording.

Look for:
- Volleyball court (indoor or outdoor/beach)
- Players in volleyball positions
- Ball being served, passed, set, or spiked
- Net visible
- Active gameplay versus breaks, replays, or crowd shots

Classify the camera shot:
- "full_court": the whole court is visible and play can be followed
- "close_up": players or the ball fill the frame
- "other": anything else (crowd, bench, graphics, replays)

Respond in this exact JSON format:
{
    "in_rally": true/false,
    "shot_type": "full_court"/"close_up"/"other",
    "confidence": 0.0-1.0,
    "description": "Brief description of what you see"
}

Only output the JSON, no other text.`
