package conversation

import "github.com/nadine-ai/resubmission-copilot/internal/rejection"

// assistantSystemPrompt is the behavioral instruction seeded at the head
// of every thread.
const assistantSystemPrompt = `You are an expert medical insurance assistant. You are provided with a patient's insurance policy details, their coverage limits, services that require pre approval, other special instructions, and the services rendered during the visit.
Your task is to help the insurance team members find the information they need using the policy details that you have. You must always answer only from the information you're provided with. If you're asked about something that's not stated in the policy just say that there isn't information about it in the policy.
Always focus on the special instructions, approval preauthorization notes, and price limits. Focus on the specialty that the patient visited, pay attention and relate it to the policy.
Be efficient and concise, make fast and smart conclusions. When you're unsure always say that, do not make wrong conclusions with confidence.`

// visitContextPreamble introduces the visit block of the seed context.
const visitContextPreamble = "For your context, these are the services provided during the visit. Reference them if needed."

// justificationInstruction is the one-shot instruction for justify turns.
// The output-shape requirements are part of the contract with the
// insurer-facing workflow: cite specific policy clauses, no closing
// summary, first person address, and never repeat the rejection reason
// verbatim.
const justificationInstruction = `I will provide you with an ordered service for a patient in a visit (medication, lab test, imaging, etc.). The claimed amount for this service was rejected by the insurance company.
Use evidence for the validity of this service from the patient's policy information, and write a justification to send to the insurance company. Cite the specific policy clauses that support coverage. Write in first person, addressed to the insurer. Do not repeat or quote the rejection reason. Do not add a conclusion at the end. Keep it in a medium length, be concise and straight to the point, and do not repeat yourself.
You should follow this example:
The requested Psychiatric service 'Examination' was denied on the basis that a pre-authorization was required, however, according to the policy's Approval Preauthorization Notes: no pre-authorization is required for outpatient services except for those with specific limits (dental, optical, maternity, kidney aids, hearing aids, and dialysis). Psychiatric services are not listed among the exceptions, and the plan explicitly states that "No pre-approval required for outpatient & inpatient services except outpatient services with limits." Therefore, the psychiatric examination is a standard outpatient service that does not fall under any of the listed limited categories and is fully covered under the "Psychiatric - Covered up to Annual Limit" benefit.
Service Details:`

// categoryGuidance sharpens the justification instruction per rejection
// category. DrugCodeNotFound is absent on purpose: that category is
// answered deterministically from the SFDA list without a model call.
var categoryGuidance = map[rejection.ReasonCategory]string{
	rejection.NotClinicallyJustified: "The insurer considers the service not clinically justified for the recorded diagnosis. Argue clinical necessity from the diagnosis, the visited specialty, and the policy's covered benefits.",
	rejection.TherapeuticDuplication: "The insurer flags the service as a therapeutic duplication. Distinguish the service's indication, dosage, or timing from the allegedly duplicated item.",
	rejection.NotCovered:             "The insurer considers the service outside coverage. Point at the policy benefit, sub-limit, or special instruction under which the service is covered.",
	rejection.InconsistentWithAge:    "The insurer considers the service inconsistent with the patient's age. Argue from the diagnosis and any policy benefit that applies regardless of age, or that names the patient's age group.",
	rejection.SevereInteractions:     "The insurer flags severe interactions or a contradiction with existing therapy. Argue why the combination is clinically acceptable for this diagnosis, referencing the named drugs where known.",
}

// CategoryGuidance returns the per-category justification guidance.
// ok is false for Unclassified and for categories that are resolved
// without the model.
func CategoryGuidance(cat rejection.ReasonCategory) (string, bool) {
	text, ok := categoryGuidance[cat]
	return text, ok
}
